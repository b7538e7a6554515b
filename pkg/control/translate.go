package control

import (
	"errors"

	"github.com/chazu/zoner/pkg/event"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/sirupsen/logrus"
)

// EventTranslated fires on a TranslateControl when a drag ends.
const EventTranslated = "translated"

var (
	ErrMissingSource = errors.New("control: translate config missing: source")
	ErrMissingCamera = errors.New("control: translate config missing: camera")
	ErrNoInput       = errors.New("control: translate config enables neither mouse nor touch")
)

// TranslateConfig configures a TranslateControl.
type TranslateConfig struct {
	Source  pointer.Source        // required
	Camera  pointer.Camera        // required
	Control pointer.CameraControl // suspended while dragging; optional
	Lens    PointerLens           // optional
	Mouse   bool                  // drag with the primary button
	Touch   bool                  // drag with a single touch
}

// TranslateControl moves a whole zone by dragging its mesh.
type TranslateControl struct {
	event.Emitter

	zone    *zone.Zone
	cfg     TranslateConfig
	lens    lens
	log     logrus.FieldLogger
	toWorld pointer.RayToWorld

	starters []func()
	drag     *translateDrag
	sub      event.Subscription
	active   bool
}

// NewTranslateControl starts listening for drags on z.
func NewTranslateControl(z *zone.Zone, cfg TranslateConfig) (*TranslateControl, error) {
	switch {
	case z == nil:
		return nil, ErrMissingZone
	case cfg.Source == nil:
		return nil, ErrMissingSource
	case cfg.Camera == nil:
		return nil, ErrMissingCamera
	case !cfg.Mouse && !cfg.Touch:
		return nil, ErrNoInput
	}
	c := &TranslateControl{
		zone:    z,
		cfg:     cfg,
		lens:    lens{l: cfg.Lens},
		log:     z.Plugin().Logger().WithField("zone", z.ID()),
		toWorld: pointer.RayToWorld(geom.GroundPlane(z.Altitude())),
		active:  true,
	}
	if cfg.Mouse {
		c.starters = append(c.starters, cfg.Source.Listen(pointer.MouseDown, c.onMouseDown))
	}
	if cfg.Touch {
		c.starters = append(c.starters, cfg.Source.Listen(pointer.TouchStart, c.onTouchStart))
	}
	c.sub = z.On(event.Destroyed, func(any) { c.cleanup() })
	return c, nil
}

// Zone returns the translated zone.
func (c *TranslateControl) Zone() *zone.Zone { return c.zone }

// Active reports whether the control still listens for drags.
func (c *TranslateControl) Active() bool { return c.active }

// Dragging reports whether a drag is in progress.
func (c *TranslateControl) Dragging() bool { return c.drag != nil }

// Deactivate ends any drag and stops listening. Calling it again is a no-op.
func (c *TranslateControl) Deactivate() {
	if !c.active {
		return
	}
	c.zone.Off(c.sub)
	c.cleanup()
}

func (c *TranslateControl) cleanup() {
	if !c.active {
		return
	}
	c.active = false
	c.endDrag()
	for _, remove := range c.starters {
		remove()
	}
	c.starters = nil
	c.lens.hide()
}

func (c *TranslateControl) onMouseDown(e pointer.Event) {
	if e.Button != pointer.ButtonPrimary {
		return
	}
	c.startDrag(e.Pos, pointer.MouseMove, pointer.MouseUp, func(e pointer.Event) (v2.Vec, bool) {
		if e.Kind == pointer.MouseUp && e.Button != pointer.ButtonPrimary {
			return v2.Vec{}, false
		}
		return e.Pos, true
	})
}

func (c *TranslateControl) onTouchStart(e pointer.Event) {
	if len(e.Touches) != 1 {
		return
	}
	id := e.Touches[0].ID
	c.startDrag(e.Touches[0].Pos, pointer.TouchMove, pointer.TouchEnd, func(e pointer.Event) (v2.Vec, bool) {
		t, ok := e.ChangedTouch(id)
		return t.Pos, ok
	})
}

// hits reports whether canvasPos is over the zone mesh.
func (c *TranslateControl) hits(canvasPos v2.Vec) bool {
	id := c.zone.MeshID()
	if id == "" {
		return false
	}
	picked, ok := c.zone.Plugin().Scene().Pick(canvasPos, []string{id})
	return ok && picked == id
}

func (c *TranslateControl) startDrag(canvasPos v2.Vec, moveKind, endKind pointer.EventKind, match func(pointer.Event) (v2.Vec, bool)) {
	if !c.hits(canvasPos) {
		return
	}
	start, ok := c.toWorld(c.cfg.Camera.Ray(canvasPos))
	if !ok {
		return
	}
	c.endDrag()

	d := &translateDrag{
		c:     c,
		start: v2.Vec{X: start.X, Y: start.Z},
		init:  c.zone.Footprint(),
		match: match,
	}
	if ctl := c.cfg.Control; ctl != nil {
		ctl.SetActive(false)
	}
	d.removers = []func(){
		c.cfg.Source.Listen(moveKind, d.onMove),
		c.cfg.Source.Listen(endKind, d.onEnd),
	}
	c.drag = d
}

// endDrag detaches the current drag, if any, and restores the camera.
func (c *TranslateControl) endDrag() {
	d := c.drag
	if d == nil {
		return
	}
	c.drag = nil
	for _, remove := range d.removers {
		remove()
	}
	if ctl := c.cfg.Control; ctl != nil {
		ctl.SetActive(true)
	}
}

// translateDrag is one drag in progress. The footprint is always rebuilt
// from init so that errors do not accumulate.
type translateDrag struct {
	c        *TranslateControl
	start    v2.Vec
	init     geom.Footprint
	match    func(pointer.Event) (v2.Vec, bool)
	removers []func()
}

func (d *translateDrag) apply(canvasPos v2.Vec) {
	c := d.c
	p, ok := c.toWorld(c.cfg.Camera.Ray(canvasPos))
	if !ok {
		return
	}
	dx, dz := p.X-d.start.X, p.Z-d.start.Y
	if err := c.zone.SetFootprint(d.init.Translate(dx, dz)); err != nil {
		c.log.WithError(err).Debug("translate rebuild failed")
	}
}

func (d *translateDrag) onMove(e pointer.Event) {
	pos, ok := d.match(e)
	if !ok {
		return
	}
	d.apply(pos)
	d.c.lens.show(&pos)
}

func (d *translateDrag) onEnd(e pointer.Event) {
	pos, ok := d.match(e)
	if !ok {
		return
	}
	d.apply(pos)
	d.c.lens.hide()
	d.c.endDrag()
	d.c.Fire(EventTranslated, d.c.zone)
}
