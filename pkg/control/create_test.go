package control_test

import (
	"testing"
	"time"

	"github.com/chazu/zoner/pkg/control"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/pointer/pointertest"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectZones(c *control.CreateControl) *[]*zone.Zone {
	var got []*zone.Zone
	c.On(control.EventZoneEnd, func(p any) { got = append(got, p.(*zone.Zone)) })
	return &got
}

func TestNewCreateControlRequiresCollaborators(t *testing.T) {
	r := newRig(t)
	_, err := control.NewCreateControl(control.Options{Transport: r.mouse(), Overlay: r.overlay})
	assert.ErrorIs(t, err, control.ErrMissingPlugin)
	_, err = control.NewCreateControl(control.Options{Plugin: r.plugin, Overlay: r.overlay})
	assert.ErrorIs(t, err, control.ErrMissingTransport)
	_, err = control.NewCreateControl(control.Options{Plugin: r.plugin, Transport: r.mouse()})
	assert.ErrorIs(t, err, control.ErrMissingOverlay)
}

func TestActivateValidatesConfig(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)

	assert.ErrorIs(t, c.Activate(control.CreateConfig{Altitude: 1}), control.ErrZeroHeight)
	assert.Error(t, c.Activate(control.CreateConfig{Height: 1, Color: "green"}))
	assert.Error(t, c.Activate(control.CreateConfig{Height: 1, Alpha: zone.Alpha(2)}))
	assert.False(t, c.Active())
	assert.Zero(t, r.hub.ListenerCount())
}

func TestAxisAlignedCreatesRectangle(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Altitude: 0, Height: 3}))
	require.True(t, c.Active())

	r.hover(1, 1)
	assert.True(t, r.lens.visible)
	assert.Equal(t, v2.Vec{X: 1, Y: 1}, r.lens.pos)
	require.Len(t, r.overlay.markers, 1)
	assert.Equal(t, &v3.Vec{X: 1, Y: 0, Z: 1}, r.overlay.markers[0].pos)

	r.click(1, 1)
	require.Len(t, r.overlay.markers, 2)
	assert.Zero(t, r.previews(), "no preview before the second corner moves")

	r.hover(3, 4)
	assert.Equal(t, 1, r.previews())

	r.click(3, 4)
	require.Len(t, *zones, 1)
	z := (*zones)[0]
	assert.Equal(t, geom.Rect(v3.Vec{X: 1, Z: 1}, v3.Vec{X: 3, Z: 4}), z.Footprint())
	assert.Equal(t, 3.0, z.Height())
	assert.Equal(t, control.DefaultCreateColor, z.Color())
	assert.Equal(t, zone.DefaultAlpha, z.Alpha())

	assert.Zero(t, r.previews())
	assert.True(t, r.overlay.markers[0].destroyed)
	assert.True(t, r.overlay.markers[1].destroyed)
	assert.True(t, c.Active(), "re-armed after completion")
	assert.Equal(t, 1, r.overlay.liveMarkers(), "fresh first marker for the next zone")
}

func TestAxisAlignedPreviewNeedsDistance(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(1, 1)
	r.hover(1.005, 1)
	assert.Zero(t, r.previews())
	r.hover(2, 2)
	assert.Equal(t, 1, r.previews())
	r.hover(1, 1)
	assert.Zero(t, r.previews())
}

func TestAxisAlignedDegenerateCommitRestarts(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(1, 1)
	r.click(1, 1)

	assert.Empty(t, *zones)
	assert.Empty(t, r.plugin.Zones())
	assert.True(t, c.Active())
	assert.Equal(t, 1, r.overlay.liveMarkers())
	require.NotNil(t, r.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, r.hook.LastEntry().Level)

	r.click(0, 0)
	r.click(2, 2)
	assert.Len(t, *zones, 1)
}

func TestAxisAlignedCancelHidesAids(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.hover(5, 5)
	require.Equal(t, 1, r.previews())

	r.hub.Dispatch(pointertest.Mouse(pointer.MouseDown, 5, 5))
	r.hub.Dispatch(pointertest.Mouse(pointer.MouseMove, 50, 50))
	assert.False(t, r.lens.visible)
	assert.Nil(t, r.overlay.markers[1].pos)
	assert.Zero(t, r.previews())
}

func TestRearmVetoedFromHandler(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModeAxisAligned)
	var fired int
	c.On(control.EventZoneEnd, func(any) {
		fired++
		c.Deactivate()
	})
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.click(2, 2)

	assert.Equal(t, 1, fired)
	assert.False(t, c.Active())
	assert.Zero(t, r.hub.ListenerCount())
	assert.Zero(t, r.overlay.liveMarkers())
	assert.Len(t, r.plugin.Zones(), 1)
}

func TestDeactivateTearsDown(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}), "activating twice is a no-op")

	r.click(0, 0)
	r.click(40, 0)
	r.click(40, 40)
	r.hover(0, 40)
	require.Equal(t, 1, r.previews())

	c.Deactivate()
	c.Deactivate()
	assert.False(t, c.Active())
	assert.Zero(t, r.hub.ListenerCount())
	assert.Zero(t, r.overlay.liveMarkers())
	assert.Zero(t, r.overlay.liveWires())
	assert.Zero(t, r.previews())
	assert.False(t, r.lens.visible)
}

func TestPolysurfaceSnapClosesOnFirstVertex(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Altitude: 2, Height: 1, Color: "#FF0000"}))

	r.click(0, 0)
	r.click(40, 0)
	r.click(40, 40)
	require.Len(t, r.overlay.wires, 3)
	assert.Equal(t, v3.Vec{X: 40, Y: 2, Z: 0}, r.overlay.wires[1].start)
	assert.Equal(t, v3.Vec{X: 40, Y: 2, Z: 40}, r.overlay.wires[2].start)

	r.hover(2, 3)
	first := r.overlay.markers[0]
	assert.True(t, first.highlighted)
	assert.Equal(t, v2.Vec{X: 0, Y: 0}, r.lens.pos)
	assert.Nil(t, r.overlay.markers[3].pos, "pending marker hidden while snapped")
	assert.Equal(t, &v3.Vec{X: 0, Y: 2, Z: 0}, r.overlay.wires[2].end)

	r.hover(20, 30)
	assert.False(t, first.highlighted)

	r.click(2, 3)
	require.Len(t, *zones, 1)
	z := (*zones)[0]
	assert.Equal(t, geom.Footprint{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 40}}, z.Footprint())
	assert.Equal(t, 2.0, z.Altitude())
	assert.Equal(t, "#ff0000", z.Color())
	assert.Zero(t, r.previews())
	assert.Equal(t, 1, r.overlay.liveMarkers())
	assert.Zero(t, r.overlay.liveWires())
}

func TestPolysurfaceNoSnapBelowThreeVertices(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.click(40, 0)
	r.hover(1, 1)
	assert.False(t, r.overlay.markers[0].highlighted)
	r.click(1, 1)
	assert.Empty(t, *zones)
	assert.Equal(t, 4, r.overlay.liveMarkers(), "three placed plus the pending one")
}

func TestPolysurfaceRejectsCrossingEdge(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.click(40, 0)
	r.click(40, 40)

	r.hover(0, 40)
	assert.Equal(t, 1, r.previews())
	r.hover(20, -20)
	assert.Zero(t, r.previews(), "crossing edge hides the preview")

	r.click(20, -20)
	assert.Zero(t, r.previews())
	assert.Equal(t, 4, r.overlay.liveMarkers(), "vertex rejected")
	assert.Equal(t, 3, r.overlay.liveWires())

	r.click(1, 1)
	require.Len(t, *zones, 1)
	assert.Len(t, (*zones)[0].Footprint(), 3)
}

func TestPolysurfaceRejectsCrossingClosingEdge(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.click(40, 0)
	r.click(40, 40)
	r.click(60, 20)
	require.Equal(t, 5, r.overlay.liveMarkers())

	r.hover(1, 1)
	assert.Zero(t, r.previews())
	r.click(1, 1)
	assert.Empty(t, *zones)
	assert.Equal(t, 5, r.overlay.liveMarkers())
	assert.True(t, c.Active())
}

func TestPolysurfaceCommitOffPlaneRejected(t *testing.T) {
	r := newRig(t)
	c, err := control.NewCreateControl(control.Options{
		Plugin: r.plugin,
		Transport: &pointer.MouseTransport{
			Source: r.hub,
			Camera: missCamera{},
		},
		Overlay: r.overlay,
		Mode:    control.ModePolysurface,
	})
	require.NoError(t, err)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(5, 5)
	assert.Equal(t, 1, r.overlay.liveMarkers())
	assert.Empty(t, r.overlay.wires)
}

func TestPolysurfaceCancelKeepsConfirmedPreview(t *testing.T) {
	r := newRig(t)
	c := r.createControl(t, control.ModePolysurface)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	r.click(0, 0)
	r.click(40, 0)
	r.click(40, 40)
	r.hover(80, 80)

	r.hub.Dispatch(pointertest.Mouse(pointer.MouseDown, 80, 80))
	r.hub.Dispatch(pointertest.Mouse(pointer.MouseMove, 200, 200))
	assert.Equal(t, 1, r.previews())
	assert.Nil(t, r.overlay.markers[3].pos)
	assert.Nil(t, r.overlay.wires[2].end)
}

func TestAxisAlignedWithTouch(t *testing.T) {
	r := newRig(t)
	sched := &pointertest.Scheduler{}
	c, err := control.NewCreateControl(control.Options{
		Plugin: r.plugin,
		Transport: &pointer.TouchTransport{
			Source:    r.hub,
			Camera:    pointertest.Camera{},
			Control:   pointertest.NewCameraControl(),
			Circle:    &pointertest.Circle{},
			Scheduler: sched,
		},
		Overlay: r.overlay,
	})
	require.NoError(t, err)
	zones := collectZones(c)
	require.NoError(t, c.Activate(control.CreateConfig{Height: 1}))

	tap := func(x, y float64) {
		f := pointertest.Finger(1, x, y)
		r.hub.Dispatch(pointertest.Touches(pointer.TouchStart, f))
		sched.Advance(100 * time.Millisecond)
		r.hub.Dispatch(pointertest.Touches(pointer.TouchEnd, f))
	}
	tap(0, 0)
	tap(4, 2)

	require.Len(t, *zones, 1)
	assert.Equal(t, geom.Rect(v3.Vec{}, v3.Vec{X: 4, Z: 2}), (*zones)[0].Footprint())
}

// missCamera casts rays parallel to the ground.
type missCamera struct{}

func (missCamera) Ray(canvasPos v2.Vec) geom.Ray {
	return geom.Ray{Origin: v3.Vec{X: canvasPos.X, Y: 1, Z: canvasPos.Y}, Dir: v3.Vec{X: 1}}
}
