package kernel

import (
	"bufio"
	"fmt"
	"io"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which zone this came from
	Bounds   sdf.Box3  `json:"-"`        // computed from the full-precision positions
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Center returns the center of the mesh bounds.
func (m *Mesh) Center() v3.Vec {
	return m.Bounds.Min.Add(m.Bounds.Max).MulScalar(0.5)
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// BoundsOf returns the axis-aligned box enclosing points.
func BoundsOf(points []v3.Vec) sdf.Box3 {
	if len(points) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bb.Min = v3.Vec{X: min(bb.Min.X, p.X), Y: min(bb.Min.Y, p.Y), Z: min(bb.Min.Z, p.Z)}
		bb.Max = v3.Vec{X: max(bb.Max.X, p.X), Y: max(bb.Max.Y, p.Y), Z: max(bb.Max.Z, p.Z)}
	}
	return bb
}

// WriteSTL writes the mesh as an ASCII STL solid.
func (m *Mesh) WriteSTL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	name := m.Name
	if name == "" {
		name = "zone"
	}
	fmt.Fprintf(bw, "solid %s\n", name)
	for t := 0; t < m.TriangleCount(); t++ {
		a := m.Vertex(int(m.Indices[3*t]))
		b := m.Vertex(int(m.Indices[3*t+1]))
		c := m.Vertex(int(m.Indices[3*t+2]))
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		fmt.Fprintf(bw, "  facet normal %g %g %g\n    outer loop\n", n.X, n.Y, n.Z)
		for _, v := range []v3.Vec{a, b, c} {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("kernel: write stl: %w", err)
	}
	return nil
}
