// Package kernel defines the abstract solid kernel interface used to export
// zones as closed solids. The sdfx backend implements it; the interactive
// path builds its meshes directly in package tessellate.
package kernel

import v2 "github.com/deadsy/sdfx/vec/v2"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Prism extrudes a footprint (x, z pairs) between two elevations.
	Prism(footprint []v2.Vec, floor, ceiling float64) (Solid, error)

	// Transforms
	Translate(s Solid, dx, dy, dz float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
