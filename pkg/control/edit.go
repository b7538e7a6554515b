package control

import (
	"errors"

	"github.com/chazu/zoner/pkg/event"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sirupsen/logrus"
)

// EventEdited fires on an EditControl after a vertex drag is accepted.
const EventEdited = "edited"

var ErrMissingZone = errors.New("control: missing zone")

// EditConfig configures an EditControl.
type EditConfig struct {
	Overlay Overlay     // required
	Lens    PointerLens // optional
}

// EditControl shows one draggable handle per footprint point of a zone.
// A drag that leaves the zone without a valid mesh is rolled back when it
// ends. Handles follow the zone whenever it is rebuilt, and the control
// detaches by itself when the zone is destroyed.
type EditControl struct {
	event.Emitter

	zone    *zone.Zone
	overlay Overlay
	lens    lens
	log     logrus.FieldLogger

	handles  []Handle
	placed   []v3.Vec // last position given to each handle
	altitude float64  // ground plane the handles pick against

	destroyedSub event.Subscription
	rebuiltSub   event.Subscription
	active       bool
}

// NewEditControl attaches vertex handles to z.
func NewEditControl(z *zone.Zone, cfg EditConfig) (*EditControl, error) {
	if z == nil {
		return nil, ErrMissingZone
	}
	if cfg.Overlay == nil {
		return nil, ErrMissingOverlay
	}
	c := &EditControl{
		zone:    z,
		overlay: cfg.Overlay,
		lens:    lens{l: cfg.Lens},
		log:     z.Plugin().Logger().WithField("zone", z.ID()),
		active:  true,
	}
	c.placeHandles()
	c.destroyedSub = z.On(event.Destroyed, func(any) { c.cleanup() })
	c.rebuiltSub = z.On(zone.EventRebuilt, func(any) { c.refresh() })
	return c, nil
}

// placeHandles creates one clickable handle per footprint point.
func (c *EditControl) placeHandles() {
	z := c.zone
	c.altitude = z.Altitude()
	toWorld := pointer.RayToWorld(geom.GroundPlane(c.altitude))
	for i, p := range z.Footprint() {
		d := &vertexDrag{c: c, index: i}
		pos := lift(p, c.altitude)
		d.handle = c.overlay.NewHandle(HandleConfig{
			WorldPos: pos,
			Color:    z.Color(),
			ToWorld:  toWorld,
			OnStart:  d.onStart,
			OnMove:   d.onMove,
			OnEnd:    d.onEnd,
		})
		c.handles = append(c.handles, d.handle)
		c.placed = append(c.placed, pos)
	}
	c.setClickable(true, nil)
}

func (c *EditControl) destroyHandles() {
	for _, h := range c.handles {
		h.Destroy()
	}
	c.handles = nil
	c.placed = nil
}

// refresh moves the handles onto the rebuilt footprint. A new point count
// or altitude replaces the handles.
func (c *EditControl) refresh() {
	if !c.active {
		return
	}
	z := c.zone
	fp := z.Footprint()
	if len(fp) != len(c.handles) || z.Altitude() != c.altitude {
		c.destroyHandles()
		c.placeHandles()
		return
	}
	for i, p := range fp {
		c.place(i, lift(p, c.altitude))
	}
}

// place moves handle i unless it is already at pos.
func (c *EditControl) place(i int, pos v3.Vec) {
	if c.placed[i] == pos {
		return
	}
	c.placed[i] = pos
	c.handles[i].SetWorldPos(pos)
}

// Zone returns the edited zone.
func (c *EditControl) Zone() *zone.Zone { return c.zone }

// Active reports whether the handles are still attached.
func (c *EditControl) Active() bool { return c.active }

// Deactivate removes the handles. Calling it again is a no-op.
func (c *EditControl) Deactivate() {
	if !c.active {
		return
	}
	c.zone.Off(c.destroyedSub)
	c.zone.Off(c.rebuiltSub)
	c.cleanup()
}

func (c *EditControl) cleanup() {
	if !c.active {
		return
	}
	c.active = false
	c.destroyHandles()
	c.lens.hide()
}

// setClickable toggles every handle except skip.
func (c *EditControl) setClickable(clickable bool, skip Handle) {
	for _, h := range c.handles {
		if h != skip {
			h.SetClickable(clickable)
		}
	}
}

// vertexDrag is the drag state of one handle.
type vertexDrag struct {
	c      *EditControl
	index  int
	handle Handle

	startWorld v3.Vec
	startPoint v2.Vec
}

func (d *vertexDrag) onStart() {
	z := d.c.zone
	d.startPoint = z.Footprint()[d.index]
	d.startWorld = lift(d.startPoint, z.Altitude())
	d.c.setClickable(false, d.handle)
}

func (d *vertexDrag) onMove(canvasPos v2.Vec, worldPos v3.Vec) {
	d.c.lens.show(&canvasPos)
	p := v2.Vec{X: worldPos.X, Y: worldPos.Z}
	// The overlay has already moved the dragged handle.
	d.c.placed[d.index] = lift(p, d.c.altitude)
	if err := d.c.zone.SetPoint(d.index, p); err != nil {
		d.c.log.WithError(err).Debug("vertex drag produced an invalid footprint")
	}
}

func (d *vertexDrag) onEnd() {
	z := d.c.zone
	if z.HasMesh() {
		d.c.Fire(EventEdited, z)
	} else {
		d.c.log.WithField("point", d.index).Info("vertex drag rolled back")
		d.c.place(d.index, d.startWorld)
		if err := z.SetPoint(d.index, d.startPoint); err != nil {
			d.c.log.WithError(err).Warn("rollback failed")
		}
	}
	d.c.lens.hide()
	d.c.setClickable(true, d.handle)
}

func lift(p v2.Vec, elevation float64) v3.Vec {
	return v3.Vec{X: p.X, Y: elevation, Z: p.Y}
}
