// Package tessellate turns zone geometry into renderable triangle meshes:
// ear-clipping triangulation of footprints, closed prisms and flat preview
// polygons.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrZeroHeight is returned for prisms with no vertical extent.
var ErrZeroHeight = errors.New("tessellate: zero height is not renderable")

// sideQuad is the index pattern for one wall quad (a_floor, b_floor,
// b_ceiling, a_ceiling). flippedQuad is used when the footprint winds
// clockwise as seen from above, so walls always face outward.
var (
	sideQuad    = [6]uint32{0, 1, 2, 0, 2, 3}
	flippedQuad = [6]uint32{0, 2, 1, 0, 3, 2}
)

// meshBuilder accumulates full-precision positions and triangle indices.
type meshBuilder struct {
	positions []v3.Vec
	indices   []uint32
}

func (b *meshBuilder) add(points ...v3.Vec) uint32 {
	base := uint32(len(b.positions))
	b.positions = append(b.positions, points...)
	return base
}

func (b *meshBuilder) tri(base uint32, t Triangle, reverse bool) {
	if reverse {
		b.indices = append(b.indices, base+uint32(t[2]), base+uint32(t[1]), base+uint32(t[0]))
		return
	}
	b.indices = append(b.indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
}

func (b *meshBuilder) mesh(name string) *kernel.Mesh {
	vertices := make([]float32, 0, len(b.positions)*3)
	for _, p := range b.positions {
		vertices = append(vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  BuildNormals(vertices, b.indices),
		Indices:  b.indices,
		Name:     name,
		Bounds:   kernel.BoundsOf(b.positions),
	}
}

// BuildPrism tessellates g into a closed prism: a floor cap facing down, a
// ceiling cap facing up and one quad per footprint edge. Each surface owns
// its vertices so normals stay flat per face.
func BuildPrism(name string, g geom.ZoneGeometry) (*kernel.Mesh, error) {
	if g.Height == 0 {
		return nil, ErrZeroHeight
	}
	tris, err := Triangulate(g.Footprint)
	if err != nil {
		return nil, fmt.Errorf("tessellate: prism %q: %w", name, err)
	}

	floor, ceiling := g.Floor(), g.Ceiling()
	floorPts := g.Footprint.Lift(floor)
	ceilPts := g.Footprint.Lift(ceiling)

	var b meshBuilder
	base := b.add(floorPts...)
	for _, t := range tris {
		b.tri(base, t, true)
	}
	base = b.add(ceilPts...)
	for _, t := range tris {
		b.tri(base, t, false)
	}

	quad := sideQuad
	if !IsCCW(g.Footprint) {
		quad = flippedQuad
	}
	n := len(g.Footprint)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		base = b.add(floorPts[i], floorPts[j], ceilPts[j], ceilPts[i])
		for _, k := range quad {
			b.indices = append(b.indices, base+k)
		}
	}
	return b.mesh(name), nil
}

// BuildBase tessellates a flat polygon through points at the elevation of
// the first point. It is used for construction previews.
func BuildBase(name string, points []v3.Vec) (*kernel.Mesh, error) {
	if len(points) < 3 {
		return nil, ErrTooFewPoints
	}
	fp := geom.FootprintOf(points)
	tris, err := Triangulate(fp)
	if err != nil {
		return nil, fmt.Errorf("tessellate: base %q: %w", name, err)
	}
	var b meshBuilder
	base := b.add(fp.Lift(points[0].Y)...)
	for _, t := range tris {
		b.tri(base, t, false)
	}
	return b.mesh(name), nil
}
