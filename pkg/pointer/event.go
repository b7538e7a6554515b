// Package pointer turns raw canvas input into point selections: one
// world-space point per gesture, delivered through Handlers. Mouse and touch
// transports share the same Selector contract.
package pointer

import (
	"sync"
	"time"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// EventKind identifies a raw input event.
type EventKind int

const (
	MouseDown EventKind = iota
	MouseMove
	MouseUp
	TouchStart
	TouchMove
	TouchEnd
)

func (k EventKind) String() string {
	switch k {
	case MouseDown:
		return "mousedown"
	case MouseMove:
		return "mousemove"
	case MouseUp:
		return "mouseup"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	}
	return "unknown"
}

// Button is a mouse button number; ButtonPrimary is the left button.
type Button int

const ButtonPrimary Button = 1

// Touch is one contact point of a touch event.
type Touch struct {
	ID  int
	Pos v2.Vec
}

// Event is a raw input event in canvas coordinates.
type Event struct {
	Kind    EventKind
	Pos     v2.Vec  // mouse events
	Button  Button  // mouse events
	Touches []Touch // touches currently on the surface
	Changed []Touch // touches that changed in this event
}

// ChangedTouch returns the changed touch with the given id.
func (e Event) ChangedTouch(id int) (Touch, bool) {
	for _, t := range e.Changed {
		if t.ID == id {
			return t, true
		}
	}
	return Touch{}, false
}

// Source delivers raw input events. The returned function removes the
// listener and is safe to call more than once.
type Source interface {
	Listen(kind EventKind, fn func(Event)) (remove func())
}

type listener struct {
	fn      func(Event)
	removed bool
}

// Hub is an in-memory Source fed by the host through Dispatch. It is also
// a Scheduler: timer callbacks are delivered like events, never while a
// Dispatch is running, so listeners and timers see one event at a time.
// Listeners must not call Dispatch.
type Hub struct {
	mu        sync.Mutex
	listeners map[EventKind][]*listener

	deliver sync.Mutex // held while listeners or timer callbacks run
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[EventKind][]*listener)}
}

// Listen registers fn for events of the given kind.
func (h *Hub) Listen(kind EventKind, fn func(Event)) func() {
	l := &listener{fn: fn}
	h.mu.Lock()
	h.listeners[kind] = append(h.listeners[kind], l)
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if l.removed {
			return
		}
		l.removed = true
		ls := h.listeners[kind]
		for i, other := range ls {
			if other == l {
				h.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers e to every listener registered for its kind. Listeners
// removed while the event is being delivered are skipped.
func (h *Hub) Dispatch(e Event) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	ls := append([]*listener(nil), h.listeners[e.Kind]...)
	h.mu.Unlock()

	for _, l := range ls {
		h.mu.Lock()
		removed := l.removed
		h.mu.Unlock()
		if !removed {
			l.fn(e)
		}
	}
}

// AfterFunc implements Scheduler. f runs once no Dispatch is in progress,
// unless the timer was stopped first.
func (h *Hub) AfterFunc(d time.Duration, f func()) Timer {
	return SerialScheduler{L: &h.deliver}.AfterFunc(d, f)
}

// ListenerCount returns the number of registered listeners of all kinds.
func (h *Hub) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int
	for _, ls := range h.listeners {
		n += len(ls)
	}
	return n
}
