package geom

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func pt(x, z float64) v2.Vec { return v2.Vec{X: x, Y: z} }

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d v2.Vec
		want       bool
	}{
		{"crossing", pt(0, 0), pt(2, 2), pt(0, 2), pt(2, 0), true},
		{"disjoint", pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1), false},
		{"touching endpoint", pt(0, 0), pt(1, 1), pt(1, 1), pt(2, 0), true},
		{"collinear overlap", pt(0, 0), pt(2, 0), pt(1, 0), pt(3, 0), true},
		{"collinear apart", pt(0, 0), pt(1, 0), pt(2, 0), pt(3, 0), false},
		{"t junction", pt(0, 0), pt(2, 0), pt(1, 0), pt(1, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a, tt.b, tt.c, tt.d); got != tt.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrientation(t *testing.T) {
	if got := Orientation(pt(0, 0), pt(1, 0), pt(2, 0)); got != Collinear {
		t.Errorf("collinear = %d", got)
	}
	if got := Orientation(pt(0, 0), pt(1, 0), pt(1, 1)); got != CounterClockwise {
		t.Errorf("left turn = %d, want %d", got, CounterClockwise)
	}
	if got := Orientation(pt(0, 0), pt(1, 0), pt(1, -1)); got != Clockwise {
		t.Errorf("right turn = %d, want %d", got, Clockwise)
	}
}

func TestLastSegmentIntersects(t *testing.T) {
	// Path 0,0 -> 2,0 -> 2,2 -> 1,-1: the last edge crosses the first.
	crossing := []v2.Vec{pt(0, 0), pt(2, 0), pt(2, 2), pt(1, -1)}
	if !LastSegmentIntersects(crossing, false) {
		t.Error("expected crossing to be detected")
	}
	if LastSegmentIntersects(crossing, true) {
		t.Error("excludeFirst must skip the first edge")
	}

	open := []v2.Vec{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2)}
	if LastSegmentIntersects(open, false) {
		t.Error("square path reported as crossing")
	}

	// Closing edge back onto the first vertex touches the first edge only.
	closing := []v2.Vec{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2), pt(0, 0)}
	if !LastSegmentIntersects(closing, false) {
		t.Error("closing edge shares the first vertex and should touch edge 0")
	}
	if LastSegmentIntersects(closing, true) {
		t.Error("closing edge with excludeFirst should not intersect")
	}

	if LastSegmentIntersects(open[:3], false) {
		t.Error("three points cannot self-intersect")
	}
}

func TestSelfIntersects(t *testing.T) {
	bowtie := Footprint{pt(0, 0), pt(1, 1), pt(1, 0), pt(0, 1)}
	if !SelfIntersects(bowtie) {
		t.Error("bowtie not detected")
	}
	if SelfIntersects(square()) {
		t.Error("square reported as self-intersecting")
	}
}

func TestSignedArea(t *testing.T) {
	if got := SignedArea(square()); got != 1 {
		t.Errorf("SignedArea(square) = %v, want 1", got)
	}
	rev := Footprint{pt(0, 1), pt(1, 1), pt(1, 0), pt(0, 0)}
	if got := SignedArea(rev); got != -1 {
		t.Errorf("SignedArea(reversed) = %v, want -1", got)
	}
}
