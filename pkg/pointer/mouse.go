package pointer

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MouseTransport selects points with press/release of the primary button.
// Hover movement streams OnChange; dragging further than the move tolerance
// between press and release is treated as camera navigation and cancels the
// pending commit.
type MouseTransport struct {
	Source Source
	Camera Camera
	Config Config
}

// Selector implements Transport.
func (t *MouseTransport) Selector(toWorld RayToWorld) Selector {
	return &mouseSelector{t: t, toWorld: toWorld}
}

type mouseSelector struct {
	t       *MouseTransport
	toWorld RayToWorld
}

// Select implements Selector.
func (s *mouseSelector) Select(h Handlers) func() {
	sess := &mouseSession{
		sel:       s,
		h:         h,
		tolerance: s.t.Config.MoveTolerance,
	}
	if sess.tolerance <= 0 {
		sess.tolerance = DefaultMoveTolerance
	}
	src := s.t.Source
	sess.removers = []func(){
		src.Listen(MouseDown, sess.onDown),
		src.Listen(MouseMove, sess.onMove),
		src.Listen(MouseUp, sess.onUp),
	}
	return sess.cancel
}

// mouseSession is one point selection in progress.
type mouseSession struct {
	sel       *mouseSelector
	h         Handlers
	tolerance float64

	armed bool   // primary button is down
	start v2.Vec // canvas position of the press

	removers []func()
	done     bool
}

func (s *mouseSession) pick(pos v2.Vec) *v3.Vec {
	return pick(s.sel.t.Camera, s.sel.toWorld, pos)
}

func (s *mouseSession) onDown(e Event) {
	if e.Button != ButtonPrimary {
		return
	}
	s.armed = true
	s.start = e.Pos
}

func (s *mouseSession) onMove(e Event) {
	if s.armed {
		if movedBeyond(e.Pos, s.start, s.tolerance) {
			s.armed = false
			s.h.cancel()
		}
		return
	}
	s.h.change(e.Pos, s.pick(e.Pos))
}

func (s *mouseSession) onUp(e Event) {
	if e.Button != ButtonPrimary || !s.armed {
		return
	}
	s.cancel()
	s.h.commit(e.Pos, s.pick(e.Pos))
}

func (s *mouseSession) cancel() {
	if s.done {
		return
	}
	s.done = true
	s.armed = false
	for _, remove := range s.removers {
		remove()
	}
	s.removers = nil
}
