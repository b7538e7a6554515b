package control_test

import (
	"testing"

	"github.com/chazu/zoner/pkg/control"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/pointer/pointertest"
	"github.com/chazu/zoner/pkg/scene"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// fakeMarker projects straight down, like pointertest.Camera with scale 1.
type fakeMarker struct {
	color       string
	pos         *v3.Vec
	highlighted bool
	destroyed   bool
}

func (m *fakeMarker) Update(p *v3.Vec) {
	if p == nil {
		m.pos = nil
		return
	}
	cp := *p
	m.pos = &cp
}

func (m *fakeMarker) SetHighlighted(h bool) { m.highlighted = h }

func (m *fakeMarker) CanvasPos() v2.Vec {
	if m.pos == nil {
		return v2.Vec{}
	}
	return v2.Vec{X: m.pos.X, Y: m.pos.Z}
}

func (m *fakeMarker) Destroy() { m.destroyed = true }

type fakeWire struct {
	start     v3.Vec
	end       *v3.Vec
	destroyed bool
}

func (w *fakeWire) Update(p *v3.Vec) { w.end = p }
func (w *fakeWire) Destroy()         { w.destroyed = true }

type fakeHandle struct {
	cfg       control.HandleConfig
	pos       v3.Vec
	clickable bool
	destroyed bool
	resets    int
}

func (h *fakeHandle) SetWorldPos(p v3.Vec) {
	h.pos = p
	h.resets++
}

func (h *fakeHandle) SetClickable(c bool) { h.clickable = c }
func (h *fakeHandle) Destroy()            { h.destroyed = true }

// drag runs a whole handle gesture ending at world position to.
func (h *fakeHandle) drag(to v3.Vec) {
	h.cfg.OnStart()
	h.pos = to
	h.cfg.OnMove(v2.Vec{X: to.X, Y: to.Z}, to)
	h.cfg.OnEnd()
}

type fakeOverlay struct {
	markers []*fakeMarker
	wires   []*fakeWire
	handles []*fakeHandle
}

func (o *fakeOverlay) NewMarker(color string) control.Marker {
	m := &fakeMarker{color: color}
	o.markers = append(o.markers, m)
	return m
}

func (o *fakeOverlay) NewWire(color string, start v3.Vec) control.Wire {
	w := &fakeWire{start: start}
	o.wires = append(o.wires, w)
	return w
}

func (o *fakeOverlay) NewHandle(cfg control.HandleConfig) control.Handle {
	h := &fakeHandle{cfg: cfg, pos: cfg.WorldPos}
	o.handles = append(o.handles, h)
	return h
}

func (o *fakeOverlay) liveMarkers() int {
	var n int
	for _, m := range o.markers {
		if !m.destroyed {
			n++
		}
	}
	return n
}

func (o *fakeOverlay) liveWires() int {
	var n int
	for _, w := range o.wires {
		if !w.destroyed {
			n++
		}
	}
	return n
}

type fakeLens struct {
	visible bool
	pos     v2.Vec
}

func (l *fakeLens) SetVisible(v bool)        { l.visible = v }
func (l *fakeLens) SetCanvasPos(pos v2.Vec) { l.pos = pos }

// rig wires a plugin, an in-memory scene and a mouse transport.
type rig struct {
	scene   *scene.Memory
	plugin  *zone.Plugin
	hub     *pointer.Hub
	overlay *fakeOverlay
	lens    *fakeLens
	hook    *test.Hook
}

func newRig(t *testing.T) *rig {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	mem := scene.NewMemory()
	p, err := zone.New(zone.Config{Scene: mem, Logger: logger})
	require.NoError(t, err)
	return &rig{
		scene:   mem,
		plugin:  p,
		hub:     pointer.NewHub(),
		overlay: &fakeOverlay{},
		lens:    &fakeLens{},
		hook:    hook,
	}
}

func (r *rig) mouse() *pointer.MouseTransport {
	return &pointer.MouseTransport{Source: r.hub, Camera: pointertest.Camera{}, Config: pointer.DefaultConfig()}
}

func (r *rig) createControl(t *testing.T, mode control.Mode) *control.CreateControl {
	t.Helper()
	c, err := control.NewCreateControl(control.Options{
		Plugin:    r.plugin,
		Transport: r.mouse(),
		Overlay:   r.overlay,
		Lens:      r.lens,
		Mode:      mode,
	})
	require.NoError(t, err)
	return c
}

func (r *rig) hover(x, y float64) {
	r.hub.Dispatch(pointertest.Mouse(pointer.MouseMove, x, y))
}

func (r *rig) click(x, y float64) {
	r.hover(x, y)
	r.hub.Dispatch(pointertest.Mouse(pointer.MouseDown, x, y))
	r.hub.Dispatch(pointertest.Mouse(pointer.MouseUp, x, y))
}

// previews counts scene meshes that are not zones.
func (r *rig) previews() int {
	var n int
	for _, id := range r.scene.IDs() {
		if _, ok := r.plugin.Zone(id); !ok {
			n++
		}
	}
	return n
}
