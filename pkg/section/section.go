// Package section clips zone prisms against half-space planes and reports
// the centroid of what survives.
package section

import (
	"fmt"

	"github.com/chazu/zoner/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the signed-distance band treated as lying on a plane.
const Epsilon = 1e-5

// Class is the side of a plane a point or face lies on. Face classes are the
// bitwise OR of their vertex classes.
type Class uint8

const (
	Coplanar Class = 0
	Front    Class = 1
	Back     Class = 2
	Spanning Class = Front | Back
)

func (c Class) String() string {
	switch c {
	case Coplanar:
		return "coplanar"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// Classify returns the side of p that pt lies on.
func Classify(p geom.SectionPlane, pt v3.Vec) Class {
	t := p.SignedDistance(pt)
	switch {
	case t < -Epsilon:
		return Back
	case t > Epsilon:
		return Front
	}
	return Coplanar
}

// Faces returns the boundary polygons of the prism described by g: the
// ceiling in footprint order, the floor reversed and one quad per edge.
func Faces(g geom.ZoneGeometry) []geom.Face {
	n := len(g.Footprint)
	floor := g.Footprint.Lift(g.Floor())
	ceiling := g.Footprint.Lift(g.Ceiling())

	faces := make([]geom.Face, 0, n+2)
	faces = append(faces, geom.Face(ceiling))
	bottom := make(geom.Face, n)
	for i, p := range floor {
		bottom[n-1-i] = p
	}
	faces = append(faces, bottom)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		faces = append(faces, geom.Face{floor[i], floor[j], ceiling[j], ceiling[i]})
	}
	return faces
}

// Clip keeps the part of face on or in front of p. Faces lying entirely
// behind the plane are dropped, as are clipped remnants with fewer than
// three vertices.
func Clip(face geom.Face, p geom.SectionPlane) (geom.Face, bool) {
	classes := make([]Class, len(face))
	var faceClass Class
	for i, v := range face {
		classes[i] = Classify(p, v)
		faceClass |= classes[i]
	}

	switch faceClass {
	case Coplanar, Front:
		return face, true
	case Back:
		return nil, false
	}

	out := make(geom.Face, 0, len(face)+1)
	for i, vi := range face {
		j := (i + 1) % len(face)
		vj := face[j]
		if classes[i] != Back {
			out = append(out, vi)
		}
		if classes[i]|classes[j] == Spanning {
			edge := vj.Sub(vi)
			t := -(p.Dist + p.Dir.Dot(vi)) / p.Dir.Dot(edge)
			out = append(out, vi.Add(edge.MulScalar(t)))
		}
	}
	if len(out) < 3 {
		return nil, false
	}
	return out, true
}

// Apply clips every face against every plane in turn.
func Apply(faces []geom.Face, planes []geom.SectionPlane) []geom.Face {
	out := faces
	for _, p := range planes {
		next := make([]geom.Face, 0, len(out))
		for _, f := range out {
			if clipped, ok := Clip(f, p); ok {
				next = append(next, clipped)
			}
		}
		out = next
	}
	return out
}

// Average returns the mean of the distinct surviving boundary vertices of
// the prism after clipping against planes. Vertices are deduplicated at
// three decimal places. It reports false when nothing survives.
func Average(g geom.ZoneGeometry, planes []geom.SectionPlane) (v3.Vec, bool) {
	faces := Apply(Faces(g), planes)
	seen := make(map[string]struct{})
	var sum v3.Vec
	var count int
	for _, f := range faces {
		for _, v := range f {
			key := fmt.Sprintf("%.3f:%.3f:%.3f", v.X, v.Y, v.Z)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			sum = sum.Add(v)
			count++
		}
	}
	if count == 0 {
		return v3.Vec{}, false
	}
	return sum.MulScalar(1 / float64(count)), true
}
