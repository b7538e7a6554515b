package tessellate

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Triangle holds three indices into the input point list.
type Triangle [3]int

var (
	// ErrTooFewPoints is returned for outlines with fewer than three points.
	ErrTooFewPoints = errors.New("tessellate: need at least 3 points")
	// ErrNoEar is returned when ear clipping stalls on a degenerate or
	// self-intersecting outline.
	ErrNoEar = errors.New("tessellate: no ear found")
)

// EarError reports where ear clipping stalled.
type EarError struct {
	Points    int  // size of the input outline
	Remaining int  // vertices left when no ear could be found
	CCW       bool // winding detected on the input
}

func (e *EarError) Error() string {
	return fmt.Sprintf("tessellate: no ear found with %d of %d vertices remaining (ccw=%t)",
		e.Remaining, e.Points, e.CCW)
}

func (e *EarError) Unwrap() error { return ErrNoEar }

// turn returns the cross product of (a-b) and (c-b). Non-negative means b is
// a convex corner in the working winding.
func turn(a, b, c v2.Vec) float64 {
	ba := a.Sub(b)
	bc := c.Sub(b)
	return ba.X*bc.Y - ba.Y*bc.X
}

// IsCCW reports whether the outline winds counter-clockwise when the x/z
// plane is viewed from above (+Y). It sums the interior angles computed at
// every vertex and compares the total against (n-2)π.
func IsCCW(pts []v2.Vec) bool {
	n := len(pts)
	var sum float64
	for i := 0; i < n; i++ {
		a, b, c := pts[i], pts[(i+1)%n], pts[(i+2)%n]
		ba := a.Sub(b)
		bc := c.Sub(b)
		cos := ba.Dot(bc) / math.Sqrt(ba.Dot(ba)*bc.Dot(bc))
		angle := math.Acos(math.Max(-1, math.Min(1, cos)))
		if turn(a, b, c) >= 0 {
			sum += angle
		} else {
			sum += 2*math.Pi - angle
		}
	}
	return sum < float64(n)*math.Pi
}

// earNode is one vertex of the working polygon. prev and next index into the
// arena, idx into the caller's point slice.
type earNode struct {
	idx        int
	prev, next int
}

// Triangulate splits a simple polygon into n-2 triangles by ear clipping.
// The result indexes pts and is wound counter-clockwise as seen from above
// regardless of the input winding.
func Triangulate(pts []v2.Vec) ([]Triangle, error) {
	n := len(pts)
	if n < 3 {
		return nil, ErrTooFewPoints
	}

	ccw := IsCCW(pts)
	arena := make([]earNode, n)
	for i := range arena {
		idx := i
		if !ccw {
			idx = n - 1 - i
		}
		arena[i] = earNode{idx: idx, prev: (i + n - 1) % n, next: (i + 1) % n}
	}

	// live lists arena slots still in the polygon, in scan order.
	live := make([]int, n)
	for i := range live {
		live[i] = i
	}

	tris := make([]Triangle, 0, n-2)
	for len(live) > 3 {
		k := findEar(pts, arena, live)
		if k < 0 {
			return nil, &EarError{Points: n, Remaining: len(live), CCW: ccw}
		}
		ear := arena[live[k]]
		tris = append(tris, Triangle{arena[ear.prev].idx, ear.idx, arena[ear.next].idx})
		arena[ear.prev].next = ear.next
		arena[ear.next].prev = ear.prev
		live = append(live[:k], live[k+1:]...)
	}

	last := arena[live[0]]
	tris = append(tris, Triangle{arena[last.prev].idx, last.idx, arena[last.next].idx})
	return tris, nil
}

// findEar returns the position in live of the first ear, or -1.
func findEar(pts []v2.Vec, arena []earNode, live []int) int {
	for k, slot := range live {
		node := arena[slot]
		a := pts[arena[node.prev].idx]
		b := pts[node.idx]
		c := pts[arena[node.next].idx]
		if turn(a, b, c) < 0 {
			continue
		}
		ear := true
		for _, other := range live {
			if other == slot || other == node.prev || other == node.next {
				continue
			}
			if pointInTriangle(pts[arena[other].idx], a, b, c) {
				ear = false
				break
			}
		}
		if ear {
			return k
		}
	}
	return -1
}

func sign(p1, p2, p3 v2.Vec) float64 {
	return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
}

// pointInTriangle treats points on an edge as inside.
func pointInTriangle(p, a, b, c v2.Vec) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
