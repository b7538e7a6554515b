package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Orientation classes returned by Orientation.
const (
	Collinear        = 0
	Clockwise        = 1
	CounterClockwise = 2
)

// Orientation classifies the ordered triple (p, q, r). Comparisons are exact.
func Orientation(p, q, r v2.Vec) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if val == 0 {
		return Collinear
	}
	if val > 0 {
		return Clockwise
	}
	return CounterClockwise
}

// onSegment reports whether q lies within the bounding box of segment pr.
// Only meaningful when p, q and r are collinear.
func onSegment(p, q, r v2.Vec) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// SegmentsIntersect reports whether segment ab touches segment cd, including
// collinear overlap and shared endpoints.
func SegmentsIntersect(a, b, c, d v2.Vec) bool {
	o1 := Orientation(a, b, c)
	o2 := Orientation(a, b, d)
	o3 := Orientation(c, d, a)
	o4 := Orientation(c, d, b)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == Collinear && onSegment(a, c, b) {
		return true
	}
	if o2 == Collinear && onSegment(a, d, b) {
		return true
	}
	if o3 == Collinear && onSegment(c, a, d) {
		return true
	}
	if o4 == Collinear && onSegment(c, b, d) {
		return true
	}
	return false
}

// LastSegmentIntersects reports whether the final edge of an open path
// crosses any earlier edge that is not adjacent to it. With excludeFirst the
// first edge is skipped too, which is what a closing edge ending at path[0]
// needs.
func LastSegmentIntersects(path []v2.Vec, excludeFirst bool) bool {
	n := len(path)
	if n < 4 {
		return false
	}
	a, b := path[n-2], path[n-1]
	start := 0
	if excludeFirst {
		start = 1
	}
	for i := start; i < n-3; i++ {
		if SegmentsIntersect(a, b, path[i], path[i+1]) {
			return true
		}
	}
	return false
}

// SelfIntersects reports whether any two non-adjacent edges of the closed
// outline touch.
func SelfIntersects(f Footprint) bool {
	n := len(f)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := f[i], f[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if SegmentsIntersect(a, b, f[j], f[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// SignedArea returns the shoelace area of the closed outline in (x, z)
// coordinates.
func SignedArea(f Footprint) float64 {
	var sum float64
	for i := range f {
		p, q := f[i], f[(i+1)%len(f)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}
