package zone

import (
	"errors"
	"fmt"

	"github.com/chazu/zoner/pkg/event"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/scene"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Plugin events.
const (
	EventZoneCreated   = "zoneCreated"
	EventZoneDestroyed = "zoneDestroyed"
)

// DefaultColor is the plugin color used for zones created without one.
const DefaultColor = "#00BBFF"

// ErrMissingScene is returned by New without a scene.
var ErrMissingScene = errors.New("zone: config missing: scene")

// Config configures a Plugin.
type Config struct {
	Scene        scene.Scene        // required
	DefaultColor string             // DefaultColor when empty
	Logger       logrus.FieldLogger // logrus standard logger when nil
}

// Params describes a zone to create.
type Params struct {
	ID       string // generated when empty or already taken
	Geometry geom.ZoneGeometry
	Color    string   // plugin default when empty
	Alpha    *float64 // DefaultAlpha when nil
}

// Alpha returns a pointer to a, for Params.Alpha.
func Alpha(a float64) *float64 { return &a }

// ParamsFromJSON converts an exchange document into creation parameters.
func ParamsFromJSON(doc JSON) Params {
	return Params{ID: doc.ID, Geometry: doc.Geometry.Clone(), Color: doc.Color, Alpha: Alpha(doc.Alpha)}
}

// Plugin creates zones and tracks the live ones.
type Plugin struct {
	event.Emitter

	scene        scene.Scene
	defaultColor string
	log          logrus.FieldLogger

	zones []*Zone
	byID  map[string]*Zone
}

// New returns a Plugin rendering into cfg.Scene.
func New(cfg Config) (*Plugin, error) {
	if cfg.Scene == nil {
		return nil, ErrMissingScene
	}
	p := &Plugin{
		scene:        cfg.Scene,
		defaultColor: cfg.DefaultColor,
		log:          cfg.Logger,
		byID:         make(map[string]*Zone),
	}
	if p.defaultColor == "" {
		p.defaultColor = DefaultColor
	}
	if _, _, err := scene.ParseColor(p.defaultColor); err != nil {
		return nil, fmt.Errorf("zone: default color: %w", err)
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p, nil
}

// Scene returns the scene zones render into.
func (p *Plugin) Scene() scene.Scene { return p.scene }

// DefaultColor returns the color used for zones created without one.
func (p *Plugin) DefaultColor() string { return p.defaultColor }

// Logger returns the plugin logger.
func (p *Plugin) Logger() logrus.FieldLogger { return p.log }

// CreateZone builds a zone from params and registers it. A missing or
// taken id is replaced with a fresh one. If the mesh cannot be built
// nothing is registered and the error is returned.
func (p *Plugin) CreateZone(params Params) (*Zone, error) {
	id := params.ID
	if _, taken := p.byID[id]; taken {
		p.log.WithField("id", id).Warn("zone id already exists, assigning a new one")
		id = ""
	}
	if id == "" {
		id = uuid.NewString()
	}

	z := &Zone{
		plugin:   p,
		id:       id,
		geometry: params.Geometry.Clone(),
		alpha:    DefaultAlpha,
		visible:  true,
	}
	if params.Alpha != nil {
		if err := z.SetAlpha(*params.Alpha); err != nil {
			return nil, err
		}
	}
	color := params.Color
	if color == "" {
		color = p.defaultColor
	}
	if err := z.SetColor(color); err != nil {
		return nil, err
	}
	if err := z.Rebuild(); err != nil {
		return nil, err
	}

	p.zones = append(p.zones, z)
	p.byID[id] = z
	z.On(event.Destroyed, func(any) { p.forget(z) })
	p.Fire(EventZoneCreated, z)
	return z, nil
}

// Load recreates a zone from its exchange document.
func (p *Plugin) Load(doc JSON) (*Zone, error) {
	return p.CreateZone(ParamsFromJSON(doc))
}

func (p *Plugin) forget(z *Zone) {
	for i, other := range p.zones {
		if other == z {
			p.zones = append(p.zones[:i:i], p.zones[i+1:]...)
			break
		}
	}
	if p.byID[z.id] == z {
		delete(p.byID, z.id)
	}
	p.Fire(EventZoneDestroyed, z)
}

// Zones returns the live zones in creation order.
func (p *Plugin) Zones() []*Zone {
	return append([]*Zone(nil), p.zones...)
}

// Zone returns the live zone with the given id.
func (p *Plugin) Zone(id string) (*Zone, bool) {
	z, ok := p.byID[id]
	return z, ok
}

// Clear destroys every zone.
func (p *Plugin) Clear() {
	for _, z := range p.Zones() {
		z.Destroy()
	}
}

// Destroy destroys every zone and then the plugin itself.
func (p *Plugin) Destroy() {
	p.Clear()
	p.Close(p)
}

var _ event.Observable = (*Plugin)(nil)
