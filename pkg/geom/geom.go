package geom

import (
	"encoding/json"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Footprint is an ordered planar outline. X holds world x and Y holds world
// z; the outline is implicitly closed from the last point back to the first.
type Footprint []v2.Vec

// Clone returns a deep copy of the footprint.
func (f Footprint) Clone() Footprint {
	if f == nil {
		return nil
	}
	out := make(Footprint, len(f))
	copy(out, f)
	return out
}

// Lift places every footprint point at the given world elevation.
func (f Footprint) Lift(elevation float64) []v3.Vec {
	out := make([]v3.Vec, len(f))
	for i, p := range f {
		out[i] = v3.Vec{X: p.X, Y: elevation, Z: p.Y}
	}
	return out
}

// Translate returns a copy of the footprint moved by (dx, dz).
func (f Footprint) Translate(dx, dz float64) Footprint {
	out := make(Footprint, len(f))
	for i, p := range f {
		out[i] = v2.Vec{X: p.X + dx, Y: p.Y + dz}
	}
	return out
}

// FootprintOf projects world points onto the horizontal plane.
func FootprintOf(points []v3.Vec) Footprint {
	out := make(Footprint, len(points))
	for i, p := range points {
		out[i] = v2.Vec{X: p.X, Y: p.Z}
	}
	return out
}

// Rect returns the axis-aligned rectangle spanned by two world points,
// ordered [xmin,zmax], [xmax,zmax], [xmax,zmin], [xmin,zmin].
func Rect(a, b v3.Vec) Footprint {
	xmin, xmax := math.Min(a.X, b.X), math.Max(a.X, b.X)
	zmin, zmax := math.Min(a.Z, b.Z), math.Max(a.Z, b.Z)
	return Footprint{
		{X: xmin, Y: zmax},
		{X: xmax, Y: zmax},
		{X: xmax, Y: zmin},
		{X: xmin, Y: zmin},
	}
}

// ZoneGeometry is a footprint extruded vertically from Altitude by Height.
// A negative height extrudes downward.
type ZoneGeometry struct {
	Footprint Footprint
	Altitude  float64
	Height    float64
}

// Floor returns the lower elevation of the prism.
func (g ZoneGeometry) Floor() float64 {
	return g.Altitude + math.Min(0, g.Height)
}

// Ceiling returns the upper elevation of the prism.
func (g ZoneGeometry) Ceiling() float64 {
	return g.Floor() + math.Abs(g.Height)
}

// Clone returns a deep copy of the geometry.
func (g ZoneGeometry) Clone() ZoneGeometry {
	g.Footprint = g.Footprint.Clone()
	return g
}

type geometryJSON struct {
	PlaneCoordinates [][2]float64 `json:"planeCoordinates"`
	Altitude         float64      `json:"altitude"`
	Height           float64      `json:"height"`
}

// MarshalJSON encodes the geometry in the zone exchange shape.
func (g ZoneGeometry) MarshalJSON() ([]byte, error) {
	doc := geometryJSON{
		PlaneCoordinates: make([][2]float64, len(g.Footprint)),
		Altitude:         g.Altitude,
		Height:           g.Height,
	}
	for i, p := range g.Footprint {
		doc.PlaneCoordinates[i] = [2]float64{p.X, p.Y}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the zone exchange shape.
func (g *ZoneGeometry) UnmarshalJSON(data []byte) error {
	var doc geometryJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("geom: decode geometry: %w", err)
	}
	g.Footprint = make(Footprint, len(doc.PlaneCoordinates))
	for i, c := range doc.PlaneCoordinates {
		g.Footprint[i] = v2.Vec{X: c[0], Y: c[1]}
	}
	g.Altitude = doc.Altitude
	g.Height = doc.Height
	return nil
}

// SectionPlane is a half-space: points with Dir·p + Dist < 0 lie behind it.
type SectionPlane struct {
	Dir  v3.Vec
	Dist float64
}

// SignedDistance returns Dir·p + Dist.
func (p SectionPlane) SignedDistance(pt v3.Vec) float64 {
	return p.Dir.Dot(pt) + p.Dist
}

// Face is an ordered planar polygon in world space.
type Face []v3.Vec

// Ray is a world-space ray, usually cast from the camera through a canvas
// position.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// Up is the world up axis.
var Up = v3.Vec{X: 0, Y: 1, Z: 0}

// PlaneIntersect intersects r with the plane {p : p·normal = elevation}.
// Hits behind the ray origin are returned as well; only rays parallel to the
// plane fail.
func PlaneIntersect(elevation float64, normal v3.Vec, r Ray) (v3.Vec, bool) {
	denom := r.Dir.Dot(normal)
	if denom == 0 {
		return v3.Vec{}, false
	}
	t := -(r.Origin.Dot(normal) - elevation) / denom
	return r.Origin.Add(r.Dir.MulScalar(t)), true
}

// GroundPlane returns a ray-to-world function for the horizontal plane at
// the given elevation.
func GroundPlane(elevation float64) func(Ray) (v3.Vec, bool) {
	return func(r Ray) (v3.Vec, bool) {
		return PlaneIntersect(elevation, Up, r)
	}
}
