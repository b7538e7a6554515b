package zone

import (
	"encoding/json"
	"testing"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(altitude, height float64) geom.ZoneGeometry {
	return geom.ZoneGeometry{
		Footprint: geom.Footprint{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
		Altitude:  altitude,
		Height:    height,
	}
}

func newPlugin(t *testing.T) (*Plugin, *scene.Memory, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	s := scene.NewMemory()
	p, err := New(Config{Scene: s, Logger: logger})
	require.NoError(t, err)
	return p, s, hook
}

func TestNewRequiresScene(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingScene)

	_, err = New(Config{Scene: scene.NewMemory(), DefaultColor: "blue"})
	assert.Error(t, err)
}

func TestCreateZoneDefaults(t *testing.T) {
	p, s, _ := newPlugin(t)
	var created []*Zone
	p.On(EventZoneCreated, func(z any) { created = append(created, z.(*Zone)) })

	z, err := p.CreateZone(Params{ID: "lobby", Geometry: square(0, 3)})
	require.NoError(t, err)

	assert.Equal(t, "lobby", z.ID())
	assert.Equal(t, "#00bbff", z.Color())
	assert.Equal(t, DefaultAlpha, z.Alpha())
	assert.True(t, z.Visible())
	assert.True(t, z.HasMesh())
	assert.Equal(t, []*Zone{z}, created)
	assert.Equal(t, v3.Vec{X: 1, Y: 1.5, Z: 1}, z.Center())

	mm, ok := s.Get(z.MeshID())
	require.True(t, ok)
	spec := mm.Spec()
	assert.True(t, spec.Material.Backfaces)
	assert.Equal(t, 0.5, spec.Material.Alpha)
	assert.True(t, spec.Pickable)

	got, ok := p.Zone("lobby")
	require.True(t, ok)
	assert.Same(t, z, got)
}

func TestCreateZoneRepairsTakenID(t *testing.T) {
	p, _, hook := newPlugin(t)
	first, err := p.CreateZone(Params{ID: "a", Geometry: square(0, 1)})
	require.NoError(t, err)
	second, err := p.CreateZone(Params{ID: "a", Geometry: square(0, 1)})
	require.NoError(t, err)

	assert.Equal(t, "a", first.ID())
	assert.NotEqual(t, "a", second.ID())
	assert.NotEmpty(t, second.ID())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "a", hook.LastEntry().Data["id"])
	assert.Len(t, p.Zones(), 2)
}

func TestCreateZoneGeneratesMissingID(t *testing.T) {
	p, _, _ := newPlugin(t)
	z, err := p.CreateZone(Params{Geometry: square(0, 1)})
	require.NoError(t, err)
	assert.Len(t, z.ID(), 36)
}

func TestCreateZoneFailureRegistersNothing(t *testing.T) {
	p, s, _ := newPlugin(t)
	line := geom.ZoneGeometry{Footprint: geom.Footprint{{X: 0}, {X: 1}, {X: 2}, {X: 3}}, Height: 1}
	_, err := p.CreateZone(Params{ID: "bad", Geometry: line})
	require.Error(t, err)
	assert.Empty(t, p.Zones())
	assert.Equal(t, 0, s.Len())

	_, err = p.CreateZone(Params{ID: "flat", Geometry: square(0, 0)})
	assert.Error(t, err)
	_, err = p.CreateZone(Params{ID: "opaque", Geometry: square(0, 1), Alpha: Alpha(2)})
	assert.Error(t, err)
}

func TestRebuildFailureDropsMesh(t *testing.T) {
	p, s, _ := newPlugin(t)
	tent := geom.ZoneGeometry{Footprint: geom.Footprint{{X: 0}, {X: 1}, {X: 2}, {X: 1, Y: 1}}, Height: 1}
	z, err := p.CreateZone(Params{ID: "z", Geometry: tent})
	require.NoError(t, err)

	// Flattening the apex makes every point collinear, leaving no ear.
	require.Error(t, z.SetPoint(3, v2.Vec{X: 3, Y: 0}))
	assert.False(t, z.HasMesh())
	assert.Nil(t, z.Mesh())
	assert.Equal(t, 0, s.Len())

	require.NoError(t, z.SetPoint(3, v2.Vec{X: 1, Y: 1}))
	assert.True(t, z.HasMesh())
	assert.Equal(t, 1, s.Len())

	assert.Error(t, z.SetPoint(9, v2.Vec{}))
}

func TestGeometrySetters(t *testing.T) {
	p, _, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(0, 1)})
	require.NoError(t, err)

	require.NoError(t, z.SetAltitude(5))
	require.NoError(t, z.SetHeight(-2))
	assert.Equal(t, 3.0, z.Mesh().Bounds.Min.Y)
	assert.Equal(t, 5.0, z.Mesh().Bounds.Max.Y)

	require.NoError(t, z.SetFootprint(z.Footprint().Translate(10, 0)))
	assert.Equal(t, 11.0, z.Center().X)

	// Geometry returns a copy.
	g := z.Geometry()
	g.Footprint[0] = v2.Vec{X: 99}
	assert.Equal(t, 10.0, z.Footprint()[0].X)
}

func TestAppearanceSetters(t *testing.T) {
	p, s, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(0, 1), Color: "ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", z.Color())

	require.NoError(t, z.SetColor("#00FF00"))
	require.NoError(t, z.SetAlpha(0.25))
	assert.Error(t, z.SetColor("not-a-color"))
	assert.Equal(t, "#00ff00", z.Color())
	z.SetVisible(false)
	z.SetHighlighted(true)
	z.SetEdges(true)

	mm, ok := s.Get(z.MeshID())
	require.True(t, ok)
	spec := mm.Spec()
	assert.False(t, spec.Visible)
	assert.True(t, spec.Highlighted)
	assert.True(t, spec.Edges)
	assert.Equal(t, 0.25, spec.Material.Alpha)
	assert.InDelta(t, 1.0, spec.Material.Diffuse.G, 1e-9)

	// Appearance survives a rebuild.
	require.NoError(t, z.SetHeight(2))
	mm, ok = s.Get(z.MeshID())
	require.True(t, ok)
	assert.False(t, mm.Spec().Visible)
	assert.True(t, mm.Spec().Edges)
}

func TestDestroy(t *testing.T) {
	p, s, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(0, 1)})
	require.NoError(t, err)

	var destroyed, pluginDestroyed int
	z.On("destroyed", func(any) { destroyed++ })
	p.On(EventZoneDestroyed, func(any) { pluginDestroyed++ })

	z.Destroy()
	z.Destroy()

	assert.Equal(t, 1, destroyed)
	assert.Equal(t, 1, pluginDestroyed)
	assert.Empty(t, p.Zones())
	_, ok := p.Zone("z")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Error(t, z.Rebuild())

	// The id is free again.
	again, err := p.CreateZone(Params{ID: "z", Geometry: square(0, 1)})
	require.NoError(t, err)
	assert.Equal(t, "z", again.ID())
}

func TestDuplicate(t *testing.T) {
	p, _, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(1, 2), Color: "#123456", Alpha: Alpha(0.8)})
	require.NoError(t, err)

	dup, err := z.Duplicate()
	require.NoError(t, err)
	assert.NotEqual(t, z.ID(), dup.ID())
	assert.Equal(t, z.Geometry(), dup.Geometry())
	assert.Equal(t, "#123456", dup.Color())
	assert.Equal(t, 0.8, dup.Alpha())

	require.NoError(t, dup.SetPoint(0, v2.Vec{X: -1, Y: -1}))
	assert.Equal(t, 0.0, z.Footprint()[0].X, "duplicate shares footprint storage")
}

func TestJSONRoundTrip(t *testing.T) {
	p, _, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(1, 2), Color: "#123456", Alpha: Alpha(0.8)})
	require.NoError(t, err)

	data, err := json.Marshal(z)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"z","geometry":{"planeCoordinates":[[0,0],[2,0],[2,2],[0,2]],"altitude":1,"height":2},"alpha":0.8,"color":"#123456"}`, string(data))

	var doc JSON
	require.NoError(t, json.Unmarshal(data, &doc))
	z.Destroy()
	back, err := p.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, back.JSON())
}

func TestSectionedAverage(t *testing.T) {
	p, _, _ := newPlugin(t)
	z, err := p.CreateZone(Params{ID: "z", Geometry: square(0, 2)})
	require.NoError(t, err)

	avg, ok := z.SectionedAverage([]geom.SectionPlane{{Dir: v3.Vec{Y: 1}, Dist: -1}})
	require.True(t, ok)
	assert.InDelta(t, 1.5, avg.Y, 1e-9)

	_, ok = z.SectionedAverage([]geom.SectionPlane{{Dir: v3.Vec{Y: 1}, Dist: -10}})
	assert.False(t, ok)
}

func TestPluginDestroy(t *testing.T) {
	p, s, _ := newPlugin(t)
	for _, id := range []string{"a", "b", "c"} {
		_, err := p.CreateZone(Params{ID: id, Geometry: square(0, 1)})
		require.NoError(t, err)
	}
	var gone int
	p.On(EventZoneDestroyed, func(any) { gone++ })
	p.Destroy()
	assert.Equal(t, 3, gone)
	assert.Empty(t, p.Zones())
	assert.Equal(t, 0, s.Len())
}
