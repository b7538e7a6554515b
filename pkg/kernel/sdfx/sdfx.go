// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/zoner/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// ErrFlatPrism is returned by Prism when floor and ceiling coincide.
var ErrFlatPrism = errors.New("sdfx: prism has no thickness")

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of marching
// cubes cells along the longest bounding box axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Prism extrudes a footprint of (x, z) pairs vertically between floor and
// ceiling. sdfx extrudes 2D shapes along Z and centers them on the origin,
// so the shape is built in the x/-z plane, turned upright and lifted to the
// middle elevation.
func (k *SdfxKernel) Prism(footprint []v2.Vec, floor, ceiling float64) (kernel.Solid, error) {
	if len(footprint) < 3 {
		return nil, fmt.Errorf("sdfx: prism needs at least 3 points, got %d", len(footprint))
	}
	h := ceiling - floor
	if h < 0 {
		floor, ceiling, h = ceiling, floor, -h
	}
	if h == 0 {
		return nil, ErrFlatPrism
	}

	pts := make([]v2.Vec, len(footprint))
	for i, p := range footprint {
		pts[i] = v2.Vec{X: p.X, Y: -p.Y}
	}
	outline, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	s := sdf.Extrude3D(outline, h)

	m := sdf.Translate3d(v3.Vec{X: 0, Y: (floor + ceiling) / 2, Z: 0}).Mul(sdf.RotateX(-math.Pi / 2))
	return wrap(sdf.Transform3D(s, m)), nil
}

// Translate moves a solid by (dx, dy, dz).
func (k *SdfxKernel) Translate(s kernel.Solid, dx, dy, dz float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: dx, Y: dy, Z: dz})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)
	points := make([]v3.Vec, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
			points = append(points, v)
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Bounds:   kernel.BoundsOf(points),
	}, nil
}
