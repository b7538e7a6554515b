package pointer

import (
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TouchTransport selects points with a single tracked touch. A quick tap
// commits where it landed. Holding the touch shows the pointer circle after
// the tap delay, and once the long-press delay has also elapsed the camera
// control is suspended and the touch drags the point, streaming OnChange
// until release.
type TouchTransport struct {
	Source    Source
	Camera    Camera
	Control   CameraControl // optional
	Circle    PointerCircle // optional
	Scheduler Scheduler     // defaults to Source when it is a Scheduler, such as a Hub
	Config    Config
}

// Selector implements Transport.
func (t *TouchTransport) Selector(toWorld RayToWorld) Selector {
	return &touchSelector{t: t, toWorld: toWorld}
}

type touchSelector struct {
	t       *TouchTransport
	toWorld RayToWorld
}

// Select implements Selector.
func (s *touchSelector) Select(h Handlers) func() {
	cfg := s.t.Config
	def := DefaultConfig()
	if cfg.MoveTolerance <= 0 {
		cfg.MoveTolerance = def.MoveTolerance
	}
	if cfg.TapDelay <= 0 {
		cfg.TapDelay = def.TapDelay
	}
	if cfg.LongPressDelay <= 0 {
		cfg.LongPressDelay = def.LongPressDelay
	}
	sched := s.t.Scheduler
	if sched == nil {
		var ok bool
		if sched, ok = s.t.Source.(Scheduler); !ok {
			panic("pointer: TouchTransport needs a Scheduler")
		}
	}

	sess := &touchSession{sel: s, h: h, cfg: cfg, sched: sched}
	src := s.t.Source
	sess.removers = []func(){
		src.Listen(TouchStart, sess.onStart),
		src.Listen(TouchMove, sess.onMove),
		src.Listen(TouchEnd, sess.onEnd),
	}
	return sess.cancel
}

// touchSession is one point selection in progress. Timer callbacks may
// arrive on the scheduler's goroutine, so state is guarded by mu; handlers
// and collaborators are always called with mu released.
type touchSession struct {
	sel   *touchSelector
	h     Handlers
	cfg   Config
	sched Scheduler

	mu       sync.Mutex
	tracking bool   // a touch is being followed
	id       int    // identifier of the tracked touch
	start    v2.Vec // canvas position where the tracked touch landed
	dragging bool   // long press completed, moves stream OnChange
	tap      Timer
	press    Timer
	removers []func()
	done     bool
}

func (s *touchSession) pick(pos v2.Vec) *v3.Vec {
	return pick(s.sel.t.Camera, s.sel.toWorld, pos)
}

func (s *touchSession) onStart(e Event) {
	if len(e.Touches) != 1 {
		s.reset()
		s.h.cancel()
		return
	}
	s.reset()
	touch := e.Touches[0]
	if s.pick(touch.Pos) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.tracking = true
	s.id = touch.ID
	s.start = touch.Pos
	s.tap = s.sched.AfterFunc(s.cfg.TapDelay, s.onTap)
}

func (s *touchSession) onTap() {
	s.mu.Lock()
	if s.done || !s.tracking {
		s.mu.Unlock()
		return
	}
	start := s.start
	s.press = s.sched.AfterFunc(s.cfg.LongPressDelay, s.onLongPress)
	s.mu.Unlock()

	if c := s.sel.t.Circle; c != nil {
		c.Start(start)
	}
}

func (s *touchSession) onLongPress() {
	s.mu.Lock()
	if s.done || !s.tracking {
		s.mu.Unlock()
		return
	}
	s.dragging = true
	start := s.start
	s.mu.Unlock()

	if c := s.sel.t.Circle; c != nil {
		c.Stop()
	}
	if c := s.sel.t.Control; c != nil {
		c.SetActive(false)
	}
	s.h.change(start, s.pick(start))
}

func (s *touchSession) onMove(e Event) {
	s.mu.Lock()
	if !s.tracking {
		s.mu.Unlock()
		return
	}
	touch, ok := e.ChangedTouch(s.id)
	dragging, start := s.dragging, s.start
	s.mu.Unlock()
	if !ok {
		return
	}

	if dragging {
		s.h.change(touch.Pos, s.pick(touch.Pos))
		return
	}
	if movedBeyond(touch.Pos, start, s.cfg.MoveTolerance) {
		s.reset()
		s.h.cancel()
	}
}

func (s *touchSession) onEnd(e Event) {
	s.mu.Lock()
	if !s.tracking {
		s.mu.Unlock()
		return
	}
	touch, ok := e.ChangedTouch(s.id)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.cancel()
	s.h.commit(touch.Pos, s.pick(touch.Pos))
}

// reset abandons the tracked touch and restores the host camera.
func (s *touchSession) reset() {
	s.mu.Lock()
	if s.tap != nil {
		s.tap.Stop()
		s.tap = nil
	}
	if s.press != nil {
		s.press.Stop()
		s.press = nil
	}
	s.tracking = false
	s.dragging = false
	s.mu.Unlock()

	if c := s.sel.t.Circle; c != nil {
		c.Stop()
	}
	if c := s.sel.t.Control; c != nil {
		c.SetActive(true)
	}
}

func (s *touchSession) cancel() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	removers := s.removers
	s.removers = nil
	s.mu.Unlock()

	for _, remove := range removers {
		remove()
	}
	s.reset()
}
