package control

import (
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// vertex is a confirmed polygon corner and the aids drawn for it.
type vertex struct {
	world  v3.Vec
	marker Marker
	wire   Wire // nil for the first vertex
}

func (v vertex) destroy() {
	v.marker.Destroy()
	if v.wire != nil {
		v.wire.Destroy()
	}
}

// polysurface builds a free polygon one vertex at a time. The polygon is
// closed by committing within the snap radius of the first vertex once at
// least three vertices exist.
type polysurface struct {
	b *build

	vertices []vertex
	current  vertex // aids for the vertex being placed
	preview  *basePreview
	stop     func()
}

func newPolysurface(b *build) *polysurface {
	return &polysurface{b: b}
}

func (s *polysurface) start() func() {
	s.preview = s.b.preview()
	s.selectNext()
	return s.teardown
}

// selectNext places fresh aids for the next vertex and starts a selection.
func (s *polysurface) selectNext() {
	overlay := s.b.c.opts.Overlay
	s.current = vertex{marker: overlay.NewMarker(s.b.cfg.Color)}
	if n := len(s.vertices); n > 0 {
		s.current.wire = overlay.NewWire(s.b.cfg.Color, s.vertices[n-1].world)
	}
	s.stop = s.b.selector.Select(pointer.Handlers{
		OnCancel: s.onCancel,
		OnChange: s.onChange,
		OnCommit: s.onCommit,
	})
}

// snapped reports whether canvasPos closes the polygon.
func (s *polysurface) snapped(canvasPos v2.Vec) bool {
	if len(s.vertices) <= 2 {
		return false
	}
	first := s.vertices[0].marker.CanvasPos()
	return canvasPos.Sub(first).Length() < s.b.c.opts.SnapRadius
}

func (s *polysurface) positions() []v3.Vec {
	pos := make([]v3.Vec, len(s.vertices), len(s.vertices)+1)
	for i, v := range s.vertices {
		pos[i] = v.world
	}
	return pos
}

// intersects reports whether the edge ending at the last point of pos, or
// the closing edge back to the first vertex when closing, crosses an
// earlier edge.
func (s *polysurface) intersects(pos []v3.Vec, closing bool) bool {
	if closing {
		pos = append(pos, s.vertices[0].world)
	}
	return geom.LastSegmentIntersects(geom.FootprintOf(pos), closing)
}

func (s *polysurface) onCancel() {
	s.b.lens.hide()
	s.current.marker.Update(nil)
	if s.current.wire != nil {
		s.current.wire.Update(nil)
	}
	if len(s.vertices) > 2 {
		s.preview.update(s.positions())
	} else {
		s.preview.update(nil)
	}
}

func (s *polysurface) onChange(canvasPos v2.Vec, worldPos *v3.Vec) {
	snapped := s.snapped(canvasPos)
	if len(s.vertices) > 0 {
		s.vertices[0].marker.SetHighlighted(snapped)
	}

	end := worldPos
	if snapped {
		first := s.vertices[0]
		lensPos := first.marker.CanvasPos()
		s.b.lens.show(&lensPos)
		s.current.marker.Update(nil)
		end = &first.world
	} else {
		s.b.lens.show(&canvasPos)
		s.current.marker.Update(worldPos)
	}
	if s.current.wire != nil {
		s.current.wire.Update(end)
	}

	if len(s.vertices) < 2 || (!snapped && worldPos == nil) {
		s.preview.update(nil)
		return
	}
	pos := s.positions()
	if !snapped {
		pos = append(pos, *worldPos)
	}
	if s.intersects(pos, snapped) {
		s.preview.update(nil)
		return
	}
	s.preview.update(pos)
}

func (s *polysurface) onCommit(canvasPos v2.Vec, worldPos *v3.Vec) {
	snapped := s.snapped(canvasPos)
	if !snapped && worldPos == nil {
		s.reject()
		return
	}

	pos := s.positions()
	if !snapped {
		pos = append(pos, *worldPos)
	}
	if len(s.vertices) > 2 && s.intersects(pos, snapped) {
		s.preview.update(nil)
		s.reject()
		return
	}
	s.preview.update(pos)

	if snapped {
		s.clear()
		s.b.finish(geom.FootprintOf(pos))
		return
	}

	s.current.marker.Update(worldPos)
	if s.current.wire != nil {
		s.current.wire.Update(worldPos)
	}
	s.current.world = *worldPos
	s.vertices = append(s.vertices, s.current)
	s.selectNext()
}

// reject drops the pending vertex's aids and selects it again.
func (s *polysurface) reject() {
	s.current.destroy()
	s.selectNext()
}

// clear removes every visual aid.
func (s *polysurface) clear() {
	s.b.lens.hide()
	for _, v := range s.vertices {
		v.destroy()
	}
	s.vertices = nil
	if s.current.marker != nil {
		s.current.destroy()
		s.current = vertex{}
	}
	if s.preview != nil {
		s.preview.destroy()
		s.preview = nil
	}
}

func (s *polysurface) teardown() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.clear()
}
