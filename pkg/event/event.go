// Package event provides the small publish/subscribe capability shared by
// zones, the zone plugin and the interactive controls.
package event

import "sync"

// Destroyed is fired once when an Emitter's owner is destroyed.
const Destroyed = "destroyed"

// Handler receives an event payload.
type Handler func(payload any)

// Subscription identifies a registered handler.
type Subscription uint64

// Observable is implemented by everything that publishes events.
type Observable interface {
	On(name string, fn Handler) Subscription
	Off(sub Subscription)
	Destroy()
}

type subscriber struct {
	id   Subscription
	name string
	fn   Handler
}

// Emitter dispatches named events to subscribers in registration order.
// The zero value is ready to use.
type Emitter struct {
	mu     sync.Mutex
	next   Subscription
	subs   []subscriber
	closed bool
}

// On registers fn for events called name. Subscribing to a closed emitter
// is a no-op.
func (e *Emitter) On(name string, fn Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	if !e.closed {
		e.subs = append(e.subs, subscriber{id: e.next, name: name, fn: fn})
	}
	return e.next
}

// Off removes a subscription. Unknown subscriptions are ignored.
func (e *Emitter) Off(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == sub {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Fire calls every handler subscribed to name. Handlers may subscribe or
// unsubscribe while the event is delivered.
func (e *Emitter) Fire(name string, payload any) {
	e.mu.Lock()
	var fns []Handler
	for _, s := range e.subs {
		if s.name == name {
			fns = append(fns, s.fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// Close fires Destroyed with payload and drops all subscribers. It reports
// false if the emitter was already closed.
func (e *Emitter) Close(payload any) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.closed = true
	e.mu.Unlock()

	e.Fire(Destroyed, payload)

	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
	return true
}

// Closed reports whether Close has been called.
func (e *Emitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
