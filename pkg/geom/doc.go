// Package geom defines the planar footprint and prism geometry shared by
// every other zone package: footprints, zone geometry, section planes,
// rays and the 2D segment predicates used to reject self-intersecting
// outlines.
package geom
