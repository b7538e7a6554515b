// Package zone holds zone entities, vertical prisms over a planar
// footprint, and the plugin that creates and tracks them.
//
// Zones and the plugin are driven from the host's event loop and are not
// safe for concurrent mutation.
package zone

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/zoner/pkg/event"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/kernel"
	"github.com/chazu/zoner/pkg/scene"
	"github.com/chazu/zoner/pkg/section"
	"github.com/chazu/zoner/pkg/tessellate"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultAlpha is the opacity of zones created without one.
const DefaultAlpha = 0.5

// EventRebuilt fires on a zone after its mesh was rebuilt successfully.
const EventRebuilt = "rebuilt"

// JSON is the exchange shape of a zone.
type JSON struct {
	ID       string            `json:"id"`
	Geometry geom.ZoneGeometry `json:"geometry"`
	Alpha    float64           `json:"alpha"`
	Color    string            `json:"color"`
}

// Zone is a renderable prism. Every geometry mutation rebuilds its mesh.
type Zone struct {
	event.Emitter

	plugin   *Plugin
	id       string
	geometry geom.ZoneGeometry

	color   string
	diffuse colorful.Color
	alpha   float64

	visible     bool
	highlighted bool
	edges       bool

	handle scene.MeshHandle
	mesh   *kernel.Mesh
	center v3.Vec
}

// ID returns the zone id.
func (z *Zone) ID() string { return z.id }

// Plugin returns the plugin that owns the zone.
func (z *Zone) Plugin() *Plugin { return z.plugin }

// Geometry returns a copy of the zone geometry.
func (z *Zone) Geometry() geom.ZoneGeometry { return z.geometry.Clone() }

// Footprint returns a copy of the footprint.
func (z *Zone) Footprint() geom.Footprint { return z.geometry.Footprint.Clone() }

// Altitude returns the base elevation.
func (z *Zone) Altitude() float64 { return z.geometry.Altitude }

// Height returns the signed extrusion height.
func (z *Zone) Height() float64 { return z.geometry.Height }

// HasMesh reports whether the last rebuild succeeded.
func (z *Zone) HasMesh() bool { return z.handle != nil }

// Mesh returns the last successfully built mesh, or nil.
func (z *Zone) Mesh() *kernel.Mesh { return z.mesh }

// MeshID returns the scene id of the zone mesh, or "" if it has none.
func (z *Zone) MeshID() string {
	if z.handle == nil {
		return ""
	}
	return z.handle.ID()
}

// Center returns the center of the bounds of the last built mesh.
func (z *Zone) Center() v3.Vec { return z.center }

// Rebuild discards the zone mesh and builds a new one from the current
// geometry. On failure the zone is left without a mesh.
func (z *Zone) Rebuild() error {
	if z.Closed() {
		return fmt.Errorf("zone %s: destroyed", z.id)
	}
	if z.handle != nil {
		z.handle.Destroy()
		z.handle = nil
		z.mesh = nil
	}
	m, err := tessellate.BuildPrism(z.id, z.geometry)
	if err != nil {
		return fmt.Errorf("zone %s: %w", z.id, err)
	}
	h, err := z.plugin.scene.CreateMesh(scene.MeshSpec{
		ID:          z.id,
		Mesh:        m,
		Material:    z.material(),
		Visible:     z.visible,
		Highlighted: z.highlighted,
		Edges:       z.edges,
		Pickable:    true,
	})
	if err != nil {
		return fmt.Errorf("zone %s: %w", z.id, err)
	}
	z.handle = h
	z.mesh = m
	z.center = m.Center()
	z.Fire(EventRebuilt, z)
	return nil
}

// SetGeometry replaces the geometry and rebuilds.
func (z *Zone) SetGeometry(g geom.ZoneGeometry) error {
	z.geometry = g.Clone()
	return z.Rebuild()
}

// SetFootprint replaces the footprint and rebuilds.
func (z *Zone) SetFootprint(f geom.Footprint) error {
	z.geometry.Footprint = f.Clone()
	return z.Rebuild()
}

// SetPoint overwrites footprint point i and rebuilds.
func (z *Zone) SetPoint(i int, p v2.Vec) error {
	if i < 0 || i >= len(z.geometry.Footprint) {
		return fmt.Errorf("zone %s: point %d out of range [0, %d)", z.id, i, len(z.geometry.Footprint))
	}
	z.geometry.Footprint[i] = p
	return z.Rebuild()
}

// SetAltitude changes the base elevation and rebuilds.
func (z *Zone) SetAltitude(a float64) error {
	z.geometry.Altitude = a
	return z.Rebuild()
}

// SetHeight changes the extrusion height and rebuilds.
func (z *Zone) SetHeight(h float64) error {
	z.geometry.Height = h
	return z.Rebuild()
}

// Color returns the normalized "#rrggbb" color.
func (z *Zone) Color() string { return z.color }

// SetColor changes the zone color.
func (z *Zone) SetColor(hex string) error {
	c, norm, err := scene.ParseColor(hex)
	if err != nil {
		return fmt.Errorf("zone %s: %w", z.id, err)
	}
	z.color, z.diffuse = norm, c
	if z.handle != nil {
		z.handle.SetMaterial(z.material())
	}
	return nil
}

// Alpha returns the opacity.
func (z *Zone) Alpha() float64 { return z.alpha }

// SetAlpha changes the opacity, which must lie in [0, 1].
func (z *Zone) SetAlpha(a float64) error {
	if a < 0 || a > 1 {
		return fmt.Errorf("zone %s: alpha %v outside [0, 1]", z.id, a)
	}
	z.alpha = a
	if z.handle != nil {
		z.handle.SetMaterial(z.material())
	}
	return nil
}

// Visible reports whether the zone is shown.
func (z *Zone) Visible() bool { return z.visible }

// SetVisible shows or hides the zone.
func (z *Zone) SetVisible(v bool) {
	z.visible = v
	if z.handle != nil {
		z.handle.SetVisible(v)
	}
}

// Highlighted reports whether the zone is highlighted.
func (z *Zone) Highlighted() bool { return z.highlighted }

// SetHighlighted toggles highlighting.
func (z *Zone) SetHighlighted(v bool) {
	z.highlighted = v
	if z.handle != nil {
		z.handle.SetHighlighted(v)
	}
}

// Edges reports whether mesh edges are drawn.
func (z *Zone) Edges() bool { return z.edges }

// SetEdges toggles edge rendering.
func (z *Zone) SetEdges(v bool) {
	z.edges = v
	if z.handle != nil {
		z.handle.SetEdges(v)
	}
}

func (z *Zone) material() scene.Material {
	return scene.Material{Diffuse: z.diffuse, Alpha: z.alpha, Backfaces: true}
}

// SectionedAverage returns the centroid of the zone surface left after
// clipping against planes; see section.Average.
func (z *Zone) SectionedAverage(planes []geom.SectionPlane) (v3.Vec, bool) {
	return section.Average(z.geometry, planes)
}

// JSON returns the exchange form of the zone.
func (z *Zone) JSON() JSON {
	return JSON{ID: z.id, Geometry: z.geometry.Clone(), Alpha: z.alpha, Color: z.color}
}

// MarshalJSON encodes the zone in its exchange shape.
func (z *Zone) MarshalJSON() ([]byte, error) {
	return json.Marshal(z.JSON())
}

// Duplicate creates a copy of the zone with a fresh id through the owning
// plugin.
func (z *Zone) Duplicate() (*Zone, error) {
	alpha := z.alpha
	return z.plugin.CreateZone(Params{
		ID:       uuid.NewString(),
		Geometry: z.geometry.Clone(),
		Alpha:    &alpha,
		Color:    z.color,
	})
}

// Destroy removes the zone mesh and fires event.Destroyed. Calling it again
// is a no-op.
func (z *Zone) Destroy() {
	if z.Closed() {
		return
	}
	if z.handle != nil {
		z.handle.Destroy()
		z.handle = nil
	}
	z.Close(z)
}

var _ event.Observable = (*Zone)(nil)
