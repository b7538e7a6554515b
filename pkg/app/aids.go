package app

import (
	"math"
	"sort"

	"github.com/chazu/zoner/pkg/control"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// handleRadius is how close, in canvas pixels, a press must land to grab a
// handle.
const handleRadius = 10.0

// planCamera is the plan view the frontend draws: canvas (x, y) is world
// (x, z), seen from above. It matches the picking of scene.Memory.
type planCamera struct{}

// Ray implements pointer.Camera.
func (planCamera) Ray(canvasPos v2.Vec) geom.Ray {
	return geom.Ray{
		Origin: v3.Vec{X: canvasPos.X, Y: 1e6, Z: canvasPos.Y},
		Dir:    v3.Vec{X: 0, Y: -1, Z: 0},
	}
}

// project maps a world position back onto the canvas.
func (planCamera) project(p v3.Vec) v2.Vec { return v2.Vec{X: p.X, Y: p.Z} }

// cameraSwitch records whether frontend navigation may run.
type cameraSwitch struct {
	active bool
}

func (c *cameraSwitch) SetActive(active bool) { c.active = active }

// indicator backs both the pointer lens and the long-press circle.
type indicator struct {
	visible bool
	pos     v2.Vec
}

func (i *indicator) SetVisible(visible bool) { i.visible = visible }
func (i *indicator) SetCanvasPos(canvasPos v2.Vec) { i.pos = canvasPos }

func (i *indicator) Start(canvasPos v2.Vec) {
	i.visible = true
	i.pos = canvasPos
}

func (i *indicator) Stop() { i.visible = false }

func (i *indicator) data() IndicatorData {
	return IndicatorData{Visible: i.visible, X: i.pos.X, Y: i.pos.Y}
}

// overlay keeps the visual aids of the active tool for the frontend to
// draw, and drags handles with the pointer events of a hub. It is guarded
// by App.mu.
type overlay struct {
	cam     planCamera
	next    int
	markers map[int]*marker
	wires   map[int]*wire
	handles map[int]*handle

	drag  *handle
	touch int // touch id of drag; -1 for the mouse
}

func newOverlay() *overlay {
	return &overlay{
		markers: make(map[int]*marker),
		wires:   make(map[int]*wire),
		handles: make(map[int]*handle),
		touch:   -1,
	}
}

func (o *overlay) id() int {
	o.next++
	return o.next
}

// NewMarker implements control.Overlay.
func (o *overlay) NewMarker(color string) control.Marker {
	m := &marker{o: o, id: o.id(), color: color}
	o.markers[m.id] = m
	return m
}

// NewWire implements control.Overlay.
func (o *overlay) NewWire(color string, start v3.Vec) control.Wire {
	w := &wire{o: o, id: o.id(), color: color, start: start}
	o.wires[w.id] = w
	return w
}

// NewHandle implements control.Overlay.
func (o *overlay) NewHandle(cfg control.HandleConfig) control.Handle {
	h := &handle{o: o, id: o.id(), cfg: cfg, pos: cfg.WorldPos}
	o.handles[h.id] = h
	return h
}

// listen drags handles with the mouse and with single touches.
func (o *overlay) listen(src pointer.Source) {
	src.Listen(pointer.MouseDown, func(e pointer.Event) {
		if e.Button == pointer.ButtonPrimary {
			o.grab(e.Pos, -1)
		}
	})
	src.Listen(pointer.MouseMove, func(e pointer.Event) {
		if o.touch < 0 {
			o.move(e.Pos)
		}
	})
	src.Listen(pointer.MouseUp, func(e pointer.Event) {
		if o.touch < 0 && e.Button == pointer.ButtonPrimary {
			o.release()
		}
	})
	src.Listen(pointer.TouchStart, func(e pointer.Event) {
		if len(e.Touches) == 1 && len(e.Changed) == 1 {
			o.grab(e.Changed[0].Pos, e.Changed[0].ID)
		}
	})
	src.Listen(pointer.TouchMove, func(e pointer.Event) {
		if t, ok := e.ChangedTouch(o.touch); ok && o.touch >= 0 {
			o.move(t.Pos)
		}
	})
	src.Listen(pointer.TouchEnd, func(e pointer.Event) {
		if _, ok := e.ChangedTouch(o.touch); ok && o.touch >= 0 {
			o.release()
		}
	})
}

// grab starts dragging the nearest clickable handle under pos.
func (o *overlay) grab(pos v2.Vec, touch int) {
	if o.drag != nil {
		return
	}
	var best *handle
	bestDist := handleRadius
	for _, id := range sortedKeys(o.handles) {
		h := o.handles[id]
		if !h.clickable {
			continue
		}
		c := o.cam.project(h.pos)
		if d := math.Hypot(c.X-pos.X, c.Y-pos.Y); d <= bestDist {
			if best == nil || d < bestDist {
				best, bestDist = h, d
			}
		}
	}
	if best == nil {
		return
	}
	o.drag, o.touch = best, touch
	if best.cfg.OnStart != nil {
		best.cfg.OnStart()
	}
}

func (o *overlay) move(pos v2.Vec) {
	h := o.drag
	if h == nil || h.cfg.ToWorld == nil {
		return
	}
	world, ok := h.cfg.ToWorld(o.cam.Ray(pos))
	if !ok {
		return
	}
	h.pos = world
	if h.cfg.OnMove != nil {
		h.cfg.OnMove(pos, world)
	}
}

func (o *overlay) release() {
	h := o.drag
	if h == nil {
		return
	}
	o.drag, o.touch = nil, -1
	if h.cfg.OnEnd != nil {
		h.cfg.OnEnd()
	}
}

// snapshot lists the visible aids in creation order.
func (o *overlay) snapshot() (markers []MarkerData, wires []WireData, handles []HandleData) {
	markers, wires, handles = []MarkerData{}, []WireData{}, []HandleData{}
	for _, id := range sortedKeys(o.markers) {
		m := o.markers[id]
		if m.pos != nil {
			markers = append(markers, MarkerData{Color: m.color, Position: vec3(*m.pos), Highlighted: m.highlighted})
		}
	}
	for _, id := range sortedKeys(o.wires) {
		w := o.wires[id]
		if w.end != nil {
			wires = append(wires, WireData{Color: w.color, Start: vec3(w.start), End: vec3(*w.end)})
		}
	}
	for _, id := range sortedKeys(o.handles) {
		h := o.handles[id]
		handles = append(handles, HandleData{
			Color:     h.cfg.Color,
			Position:  vec3(h.pos),
			Clickable: h.clickable,
			Dragging:  h == o.drag,
		})
	}
	return markers, wires, handles
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func vec3(p v3.Vec) [3]float64 { return [3]float64{p.X, p.Y, p.Z} }

type marker struct {
	o           *overlay
	id          int
	color       string
	pos         *v3.Vec
	canvas      v2.Vec
	highlighted bool
}

func (m *marker) Update(worldPos *v3.Vec) {
	if worldPos == nil {
		m.pos = nil
		return
	}
	p := *worldPos
	m.pos = &p
	m.canvas = m.o.cam.project(p)
}

func (m *marker) SetHighlighted(highlighted bool) { m.highlighted = highlighted }
func (m *marker) CanvasPos() v2.Vec { return m.canvas }
func (m *marker) Destroy() { delete(m.o.markers, m.id) }

type wire struct {
	o     *overlay
	id    int
	color string
	start v3.Vec
	end   *v3.Vec
}

func (w *wire) Update(end *v3.Vec) {
	if end == nil {
		w.end = nil
		return
	}
	p := *end
	w.end = &p
}

func (w *wire) Destroy() { delete(w.o.wires, w.id) }

type handle struct {
	o         *overlay
	id        int
	cfg       control.HandleConfig
	pos       v3.Vec
	clickable bool
}

func (h *handle) SetWorldPos(worldPos v3.Vec) { h.pos = worldPos }
func (h *handle) SetClickable(clickable bool) { h.clickable = clickable }

func (h *handle) Destroy() {
	delete(h.o.handles, h.id)
	if h.o.drag == h {
		h.o.drag, h.o.touch = nil, -1
	}
}
