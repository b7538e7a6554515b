package control

import (
	"math"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// axisAligned builds a rectangle from two opposite corners.
type axisAligned struct {
	b *build

	first   v3.Vec
	marker1 Marker
	marker2 Marker
	preview *basePreview
	stop    func()
}

func newAxisAligned(b *build) *axisAligned {
	return &axisAligned{b: b}
}

func (s *axisAligned) start() func() {
	s.marker1 = s.b.c.opts.Overlay.NewMarker(s.b.cfg.Color)
	s.selectFirst()
	return s.teardown
}

func (s *axisAligned) selectFirst() {
	s.stop = s.b.selector.Select(pointer.Handlers{
		OnCancel: func() {
			s.b.lens.hide()
			s.marker1.Update(nil)
		},
		OnChange: func(canvasPos v2.Vec, worldPos *v3.Vec) {
			s.b.lens.show(&canvasPos)
			s.marker1.Update(worldPos)
		},
		OnCommit: func(canvasPos v2.Vec, worldPos *v3.Vec) {
			s.marker1.Update(worldPos)
			if worldPos == nil {
				s.selectFirst()
				return
			}
			s.first = *worldPos
			s.selectSecond()
		},
	})
}

func (s *axisAligned) selectSecond() {
	if s.marker2 == nil {
		s.marker2 = s.b.c.opts.Overlay.NewMarker(s.b.cfg.Color)
		s.preview = s.b.preview()
	}
	s.stop = s.b.selector.Select(pointer.Handlers{
		OnCancel: func() {
			s.b.lens.hide()
			s.marker2.Update(nil)
			s.preview.update(nil)
		},
		OnChange: func(canvasPos v2.Vec, worldPos *v3.Vec) {
			s.b.lens.show(&canvasPos)
			s.marker2.Update(worldPos)
			s.preview.update(s.base(worldPos))
		},
		OnCommit: func(canvasPos v2.Vec, worldPos *v3.Vec) {
			s.marker2.Update(worldPos)
			if worldPos == nil {
				s.preview.update(nil)
				s.selectSecond()
				return
			}
			s.clear()
			s.b.finish(geom.Rect(s.first, *worldPos))
		},
	})
}

// base returns the preview outline for the second corner at worldPos, or
// nil when the corners are too close to show anything.
func (s *axisAligned) base(worldPos *v3.Vec) []v3.Vec {
	if worldPos == nil || worldPos.Sub(s.first).Length() <= s.b.c.opts.PreviewMinDistance {
		return nil
	}
	return geom.Rect(s.first, *worldPos).Lift(math.Min(s.first.Y, worldPos.Y))
}

// clear removes the visual aids.
func (s *axisAligned) clear() {
	s.b.lens.hide()
	if s.marker1 != nil {
		s.marker1.Destroy()
		s.marker1 = nil
	}
	if s.marker2 != nil {
		s.marker2.Destroy()
		s.marker2 = nil
	}
	if s.preview != nil {
		s.preview.destroy()
		s.preview = nil
	}
}

func (s *axisAligned) teardown() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.clear()
}
