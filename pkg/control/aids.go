// Package control implements the interactive zone tools: construction of
// new zones (axis-aligned rectangles and free polygons), vertex editing and
// whole-zone translation. Pointer input comes from package pointer; visual
// aids such as markers, wires and handles are drawn by the host through
// Overlay.
package control

import (
	"github.com/chazu/zoner/pkg/pointer"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Marker is a dot drawn at a world position.
type Marker interface {
	// Update moves the marker; nil hides it.
	Update(worldPos *v3.Vec)
	SetHighlighted(highlighted bool)
	// CanvasPos returns the marker's current screen position.
	CanvasPos() v2.Vec
	Destroy()
}

// Wire is a line from a fixed start point to a moving end point.
type Wire interface {
	// Update moves the end point; nil hides the wire.
	Update(end *v3.Vec)
	Destroy()
}

// PointerLens is a magnifier shown around the pointer.
type PointerLens interface {
	SetVisible(visible bool)
	SetCanvasPos(canvasPos v2.Vec)
}

// HandleConfig describes a draggable handle.
type HandleConfig struct {
	WorldPos v3.Vec
	Color    string
	ToWorld  pointer.RayToWorld
	OnStart  func()
	OnMove   func(canvasPos v2.Vec, worldPos v3.Vec)
	OnEnd    func()
}

// Handle is a draggable dot.
type Handle interface {
	SetWorldPos(worldPos v3.Vec)
	SetClickable(clickable bool)
	Destroy()
}

// Overlay creates visual aids.
type Overlay interface {
	NewMarker(color string) Marker
	NewWire(color string, start v3.Vec) Wire
	NewHandle(cfg HandleConfig) Handle
}

// lens wraps an optional PointerLens.
type lens struct {
	l PointerLens
}

// show moves the lens to pos, or hides it when pos is nil.
func (l lens) show(pos *v2.Vec) {
	if l.l == nil {
		return
	}
	l.l.SetVisible(pos != nil)
	if pos != nil {
		l.l.SetCanvasPos(*pos)
	}
}

func (l lens) hide() { l.show(nil) }
