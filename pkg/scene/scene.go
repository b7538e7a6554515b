// Package scene is the boundary to the renderer: zones and construction
// previews hand it meshes and materials and ask it for picks.
package scene

import (
	"fmt"
	"strings"

	"github.com/chazu/zoner/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Material is the surface appearance of a mesh.
type Material struct {
	Diffuse   colorful.Color
	Alpha     float64
	Backfaces bool
}

// MeshSpec describes a mesh to add to the scene.
type MeshSpec struct {
	ID          string // generated when empty
	Mesh        *kernel.Mesh
	Material    Material
	Visible     bool
	Highlighted bool
	Edges       bool
	Pickable    bool
}

// MeshHandle is a mesh owned by the scene.
type MeshHandle interface {
	ID() string
	SetVisible(visible bool)
	SetHighlighted(highlighted bool)
	SetEdges(edges bool)
	SetMaterial(m Material)
	Destroy()
}

// Scene creates meshes and resolves picks.
type Scene interface {
	CreateMesh(spec MeshSpec) (MeshHandle, error)
	// Pick returns the id of the nearest pickable mesh under canvasPos,
	// restricted to include when it is non-empty.
	Pick(canvasPos v2.Vec, include []string) (string, bool)
}

// ParseColor parses a 6-digit hex color, with or without a leading '#', and
// returns it with its normalized "#rrggbb" spelling.
func ParseColor(hex string) (colorful.Color, string, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return colorful.Color{}, "", fmt.Errorf("scene: color %q: want 6 hex digits", hex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, "", fmt.Errorf("scene: color %q: %w", hex, err)
	}
	return c, strings.ToLower(s), nil
}
