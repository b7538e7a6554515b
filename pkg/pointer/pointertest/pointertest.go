// Package pointertest provides deterministic collaborators for testing
// point selection: a manual clock, a top-down camera and recording camera
// control and pointer circle fakes.
package pointertest

import (
	"sync"
	"time"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Scheduler is a manual clock. Callbacks run synchronously inside Advance.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

type timer struct {
	s       *Scheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc implements pointer.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) pointer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due callbacks in order.
// Callbacks scheduled while advancing fire too if they fall due.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *timer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of callbacks neither fired nor stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Camera looks straight down; canvas (x, y) maps to world (x*Scale, z=y*Scale).
type Camera struct {
	Scale float64
}

// Ray implements pointer.Camera.
func (c Camera) Ray(canvasPos v2.Vec) geom.Ray {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return geom.Ray{
		Origin: v3.Vec{X: canvasPos.X * scale, Y: 100, Z: canvasPos.Y * scale},
		Dir:    v3.Vec{X: 0, Y: -1, Z: 0},
	}
}

// CameraControl records activation changes.
type CameraControl struct {
	mu     sync.Mutex
	active bool
	calls  []bool
}

// NewCameraControl returns an active camera control.
func NewCameraControl() *CameraControl {
	return &CameraControl{active: true}
}

// SetActive implements pointer.CameraControl.
func (c *CameraControl) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
	c.calls = append(c.calls, active)
}

// Active reports the current state.
func (c *CameraControl) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Circle records pointer circle activity.
type Circle struct {
	mu      sync.Mutex
	running bool
	Starts  int
	At      v2.Vec
}

// Start implements pointer.PointerCircle.
func (c *Circle) Start(pos v2.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.Starts++
	c.At = pos
}

// Stop implements pointer.PointerCircle.
func (c *Circle) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Running reports whether the circle is shown.
func (c *Circle) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Mouse returns a primary-button mouse event.
func Mouse(kind pointer.EventKind, x, y float64) pointer.Event {
	return pointer.Event{Kind: kind, Pos: v2.Vec{X: x, Y: y}, Button: pointer.ButtonPrimary}
}

// Touches returns a touch event where every listed touch is both active and
// changed.
func Touches(kind pointer.EventKind, touches ...pointer.Touch) pointer.Event {
	return pointer.Event{Kind: kind, Touches: touches, Changed: touches}
}

// Finger returns a touch at (x, y).
func Finger(id int, x, y float64) pointer.Touch {
	return pointer.Touch{ID: id, Pos: v2.Vec{X: x, Y: y}}
}
