package pointer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/zoner/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Default gesture thresholds.
const (
	DefaultMoveTolerance  = 20.0
	DefaultTapDelay       = 250 * time.Millisecond
	DefaultLongPressDelay = 300 * time.Millisecond
)

// Camera casts a world-space ray through a canvas position.
type Camera interface {
	Ray(canvasPos v2.Vec) geom.Ray
}

// CameraControl is the host's camera navigation, suspended while a touch
// gesture is dragging a point.
type CameraControl interface {
	SetActive(active bool)
}

// PointerCircle is the long-press progress indicator.
type PointerCircle interface {
	Start(canvasPos v2.Vec)
	Stop()
}

// RayToWorld maps a camera ray to a world point, usually by intersecting a
// plane. It reports false when the ray misses.
type RayToWorld func(r geom.Ray) (v3.Vec, bool)

// Handlers receive the outcome of a point selection. World positions are nil
// when the pointer ray misses the target surface.
type Handlers struct {
	OnCancel func()
	OnChange func(canvasPos v2.Vec, worldPos *v3.Vec)
	OnCommit func(canvasPos v2.Vec, worldPos *v3.Vec)
}

func (h Handlers) cancel() {
	if h.OnCancel != nil {
		h.OnCancel()
	}
}

func (h Handlers) change(canvasPos v2.Vec, worldPos *v3.Vec) {
	if h.OnChange != nil {
		h.OnChange(canvasPos, worldPos)
	}
}

func (h Handlers) commit(canvasPos v2.Vec, worldPos *v3.Vec) {
	if h.OnCommit != nil {
		h.OnCommit(canvasPos, worldPos)
	}
}

// Selector starts point selection sessions. The returned cancel function
// detaches every listener of the session and is idempotent.
type Selector interface {
	Select(h Handlers) (cancel func())
}

// Transport binds a raw input stream to a ray-to-world mapping.
type Transport interface {
	Selector(toWorld RayToWorld) Selector
}

// Timer is a pending deferred callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SerialScheduler runs callbacks while holding L, the lock the host holds
// while it feeds events to the transports. A timer stopped under L never
// runs its callback, even if it already expired and is waiting for L.
type SerialScheduler struct {
	L sync.Locker
}

// AfterFunc implements Scheduler.
func (s SerialScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &serialTimer{}
	t.t = time.AfterFunc(d, func() {
		s.L.Lock()
		defer s.L.Unlock()
		if t.state.CompareAndSwap(timerPending, timerFired) {
			f()
		}
	})
	return t
}

const (
	timerPending int32 = iota
	timerStopped
	timerFired
)

type serialTimer struct {
	t     *time.Timer
	state atomic.Int32
}

// Stop reports whether it kept the callback from running.
func (t *serialTimer) Stop() bool {
	t.t.Stop()
	return t.state.CompareAndSwap(timerPending, timerStopped)
}

// Config holds gesture thresholds.
type Config struct {
	MoveTolerance  float64 // canvas pixels
	TapDelay       time.Duration
	LongPressDelay time.Duration
}

// DefaultConfig returns the default gesture thresholds.
func DefaultConfig() Config {
	return Config{
		MoveTolerance:  DefaultMoveTolerance,
		TapDelay:       DefaultTapDelay,
		LongPressDelay: DefaultLongPressDelay,
	}
}

// pick casts a ray through canvasPos and maps it to the world.
func pick(cam Camera, toWorld RayToWorld, canvasPos v2.Vec) *v3.Vec {
	p, ok := toWorld(cam.Ray(canvasPos))
	if !ok {
		return nil
	}
	return &p
}

func movedBeyond(a, b v2.Vec, tolerance float64) bool {
	return a.Sub(b).Length() > tolerance
}
