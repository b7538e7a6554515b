package control

import (
	"errors"
	"fmt"

	"github.com/chazu/zoner/pkg/event"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/scene"
	"github.com/chazu/zoner/pkg/zone"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
)

// EventZoneEnd fires on a CreateControl with the new *zone.Zone each time a
// construction completes.
const EventZoneEnd = "zoneEnd"

// Construction defaults.
const (
	DefaultCreateColor        = "#008000"
	DefaultSnapRadius         = 10.0
	DefaultPreviewMinDistance = 0.01
)

// Mode selects how a CreateControl builds footprints.
type Mode int

const (
	// ModeAxisAligned builds a rectangle from two opposite corners.
	ModeAxisAligned Mode = iota
	// ModePolysurface builds a free polygon closed by snapping to its
	// first vertex.
	ModePolysurface
)

func (m Mode) String() string {
	switch m {
	case ModeAxisAligned:
		return "axis-aligned"
	case ModePolysurface:
		return "polysurface"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	ErrMissingPlugin    = errors.New("control: options missing: plugin")
	ErrMissingTransport = errors.New("control: options missing: transport")
	ErrMissingOverlay   = errors.New("control: options missing: overlay")
	ErrZeroHeight       = errors.New("control: height must be non-zero")
)

// Options configures a CreateControl.
type Options struct {
	Plugin    *zone.Plugin     // required
	Transport pointer.Transport // required
	Overlay   Overlay           // required
	Lens      PointerLens       // optional
	Mode      Mode

	SnapRadius         float64            // canvas pixels; DefaultSnapRadius when zero
	PreviewMinDistance float64            // world units; DefaultPreviewMinDistance when zero
	Logger             logrus.FieldLogger // plugin logger when nil
}

// CreateConfig parametrizes one activation.
type CreateConfig struct {
	Altitude float64  // ground plane elevation the points are picked on
	Height   float64  // required, non-zero
	Color    string   // DefaultCreateColor when empty
	Alpha    *float64 // zone.DefaultAlpha when nil
}

// CreateControl interactively builds new zones. Each completed zone fires
// EventZoneEnd and the control re-arms for the next one, unless Deactivate
// is called from an EventZoneEnd handler.
type CreateControl struct {
	event.Emitter

	opts       Options
	log        logrus.FieldLogger
	deactivate func()
}

// NewCreateControl returns an inactive control.
func NewCreateControl(opts Options) (*CreateControl, error) {
	switch {
	case opts.Plugin == nil:
		return nil, ErrMissingPlugin
	case opts.Transport == nil:
		return nil, ErrMissingTransport
	case opts.Overlay == nil:
		return nil, ErrMissingOverlay
	}
	if opts.SnapRadius <= 0 {
		opts.SnapRadius = DefaultSnapRadius
	}
	if opts.PreviewMinDistance <= 0 {
		opts.PreviewMinDistance = DefaultPreviewMinDistance
	}
	log := opts.Logger
	if log == nil {
		log = opts.Plugin.Logger()
	}
	return &CreateControl{
		opts: opts,
		log:  log.WithField("mode", opts.Mode.String()),
	}, nil
}

// Mode returns the construction mode.
func (c *CreateControl) Mode() Mode { return c.opts.Mode }

// Active reports whether a construction is armed.
func (c *CreateControl) Active() bool { return c.deactivate != nil }

// Activate arms the control. It does nothing when already active.
func (c *CreateControl) Activate(cfg CreateConfig) error {
	if c.Active() {
		return nil
	}
	b, err := c.newBuild(cfg)
	if err != nil {
		return err
	}
	b.arm()
	return nil
}

// Deactivate stops the construction in progress and removes its visual
// aids. It is safe to call when inactive.
func (c *CreateControl) Deactivate() {
	if d := c.deactivate; d != nil {
		c.deactivate = nil
		d()
	}
}

// build holds what every construction of one activation shares.
type build struct {
	c        *CreateControl
	cfg      CreateConfig
	color    colorful.Color
	selector pointer.Selector
	lens     lens
}

func (c *CreateControl) newBuild(cfg CreateConfig) (*build, error) {
	if cfg.Height == 0 {
		return nil, ErrZeroHeight
	}
	if cfg.Color == "" {
		cfg.Color = DefaultCreateColor
	}
	col, hex, err := scene.ParseColor(cfg.Color)
	if err != nil {
		return nil, fmt.Errorf("control: color: %w", err)
	}
	cfg.Color = hex
	if cfg.Alpha == nil {
		cfg.Alpha = zone.Alpha(zone.DefaultAlpha)
	} else if a := *cfg.Alpha; a < 0 || a > 1 {
		return nil, fmt.Errorf("control: alpha %v out of range [0,1]", a)
	}
	toWorld := pointer.RayToWorld(geom.GroundPlane(cfg.Altitude))
	return &build{
		c:        c,
		cfg:      cfg,
		color:    col,
		selector: c.opts.Transport.Selector(toWorld),
		lens:     lens{l: c.opts.Lens},
	}, nil
}

// arm starts one construction and installs its teardown as the control's
// deactivation.
func (b *build) arm() {
	switch b.c.opts.Mode {
	case ModePolysurface:
		b.c.deactivate = newPolysurface(b).start()
	default:
		b.c.deactivate = newAxisAligned(b).start()
	}
}

func (b *build) preview() *basePreview {
	return newBasePreview(b.c.opts.Plugin.Scene(), b.color, *b.cfg.Alpha)
}

// finish creates the zone for footprint. On success EventZoneEnd fires and,
// unless a handler deactivated the control, the next construction is armed.
// On failure the construction restarts without firing.
func (b *build) finish(footprint geom.Footprint) {
	z, err := b.c.opts.Plugin.CreateZone(zone.Params{
		Geometry: geom.ZoneGeometry{
			Footprint: footprint,
			Altitude:  b.cfg.Altitude,
			Height:    b.cfg.Height,
		},
		Color: b.cfg.Color,
		Alpha: b.cfg.Alpha,
	})
	if err != nil {
		b.c.log.WithError(err).WithField("points", len(footprint)).Warn("zone construction failed, restarting")
		b.arm()
		return
	}

	reactivate := true
	b.c.deactivate = func() { reactivate = false }
	b.c.Fire(EventZoneEnd, z)
	if reactivate {
		b.arm()
	}
}
