package scene

import (
	"testing"

	"github.com/chazu/zoner/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxMesh(minX, minZ, maxX, maxZ, top float64) *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float32{0, 0, 0},
		Bounds: sdf.Box3{
			Min: v3.Vec{X: minX, Y: 0, Z: minZ},
			Max: v3.Vec{X: maxX, Y: top, Z: maxZ},
		},
	}
}

func TestParseColor(t *testing.T) {
	c, norm, err := ParseColor("00BBFF")
	require.NoError(t, err)
	assert.Equal(t, "#00bbff", norm)
	assert.InDelta(t, 0xBB/255.0, c.G, 1e-9)

	_, _, err = ParseColor("#12345")
	assert.Error(t, err)
	_, _, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestMemoryCreateAndDestroy(t *testing.T) {
	s := NewMemory()
	h, err := s.CreateMesh(MeshSpec{Mesh: boxMesh(0, 0, 1, 1, 1), Visible: true})
	require.NoError(t, err)
	assert.Equal(t, "mesh-1", h.ID())

	_, err = s.CreateMesh(MeshSpec{ID: "mesh-1", Mesh: boxMesh(0, 0, 1, 1, 1)})
	assert.Error(t, err, "duplicate id")
	_, err = s.CreateMesh(MeshSpec{})
	assert.Error(t, err, "missing mesh")

	h.SetHighlighted(true)
	mm, ok := s.Get(h.ID())
	require.True(t, ok)
	assert.True(t, mm.Spec().Highlighted)

	h.Destroy()
	h.Destroy()
	assert.Equal(t, 0, s.Len())
}

func TestMemoryPick(t *testing.T) {
	s := NewMemory()
	low, err := s.CreateMesh(MeshSpec{ID: "low", Mesh: boxMesh(0, 0, 10, 10, 1), Visible: true, Pickable: true})
	require.NoError(t, err)
	_, err = s.CreateMesh(MeshSpec{ID: "high", Mesh: boxMesh(5, 5, 10, 10, 3), Visible: true, Pickable: true})
	require.NoError(t, err)

	id, ok := s.Pick(v2.Vec{X: 7, Y: 7}, nil)
	require.True(t, ok)
	assert.Equal(t, "high", id)

	id, ok = s.Pick(v2.Vec{X: 7, Y: 7}, []string{"low"})
	require.True(t, ok)
	assert.Equal(t, "low", id)

	low.SetVisible(false)
	_, ok = s.Pick(v2.Vec{X: 1, Y: 1}, nil)
	assert.False(t, ok)
}
