// Package app is the desktop backend. It evaluates zone scripts into live
// zones and exposes the results to the frontend through Wails bindings.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/chazu/zoner/pkg/config"
	"github.com/chazu/zoner/pkg/engine"
	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/kernel"
	"github.com/chazu/zoner/pkg/kernel/sdfx"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/scene"
	"github.com/chazu/zoner/pkg/store"
	"github.com/chazu/zoner/pkg/zone"
	"github.com/sirupsen/logrus"
)

// boundsEpsilon absorbs rounding in prism bounds rotated by the kernel.
const boundsEpsilon = 1e-9

// ErrNoStore is returned by persistence bindings when no store is attached.
var ErrNoStore = errors.New("app: no zone store attached")

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	log    *logrus.Entry

	mu     sync.Mutex
	scene  *scene.Memory
	plugin *zone.Plugin
	store  *store.Store

	// Interactive tools. Pointer events and touch timers run under mu.
	hub          *pointer.Hub
	camera       planCamera
	cameraSwitch *cameraSwitch
	overlay      *overlay
	lens         *indicator
	circle       *indicator
	tool         activeTool
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	ZoneID   string    `json:"zoneId"`
	Color    string    `json:"color"`
	Alpha    float64   `json:"alpha"`
}

// CentroidData is the sectioned surface centroid of one zone.
type CentroidData struct {
	ZoneID   string     `json:"zoneId"`
	Position [3]float64 `json:"position"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	ZoneID  string `json:"zoneId,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes    []MeshData      `json:"meshes"`
	Zones     []zone.JSON     `json:"zones"`
	Centroids []CentroidData  `json:"centroids"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// New creates an App with an engine, the sdfx kernel, an in-memory scene
// and a pointer hub for the interactive tools.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := scene.NewMemory()
	plugin, err := zone.New(zone.Config{
		Scene:        sc,
		DefaultColor: cfg.Zones.DefaultColor,
		Logger:       cfg.NamedLogger("zone"),
	})
	if err != nil {
		return nil, err
	}
	hub := pointer.NewHub()
	ov := newOverlay()
	ov.listen(hub)
	return &App{
		ctx:          context.Background(),
		cfg:          cfg,
		engine:       engine.New(engine.Config{Timeout: cfg.EvalTimeout(), Logger: cfg.NamedLogger("engine")}),
		kernel:       sdfx.NewWithCells(cfg.Kernel.MeshCells),
		log:          cfg.NamedLogger("app"),
		scene:        sc,
		plugin:       plugin,
		hub:          hub,
		cameraSwitch: &cameraSwitch{active: true},
		overlay:      ov,
		lens:         &indicator{},
		circle:       &indicator{},
	}, nil
}

// AttachStore enables the persistence bindings.
func (a *App) AttachStore(s *store.Store) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = s
}

// Startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// Shutdown is called by Wails when the window closes.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTool()
	a.plugin.Clear()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Warn("closing zone store")
		}
		a.store = nil
	}
}

// Evaluate takes zone script source, replaces the live zones with the ones
// it defines and returns their meshes plus any errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:    []MeshData{},
		Zones:     []zone.JSON{},
		Centroids: []CentroidData{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a document.
	doc, evalErrs, err := a.engine.EvaluateContext(a.ctx, source)
	if err != nil {
		a.log.WithError(err).Error("evaluate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range doc.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{ZoneID: w.ZoneID, Message: w.Message})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTool()
	a.plugin.Clear()

	// Step 2: Validate and build each zone. Blocking findings skip the zone.
	for _, params := range doc.Zones {
		found := geom.ValidateAll(params.Geometry)
		for _, w := range found.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{ZoneID: params.ID, Message: w.Error()})
		}
		if !found.OK() {
			for _, e := range found.Errors {
				result.Errors = append(result.Errors, EvalErrorData{ZoneID: params.ID, Message: e.Error()})
			}
			continue
		}
		if params.Alpha == nil {
			params.Alpha = zone.Alpha(a.cfg.Zones.Alpha)
		}
		z, err := a.plugin.CreateZone(params)
		if err != nil {
			a.log.WithError(err).WithField("id", params.ID).Warn("zone build failed")
			result.Errors = append(result.Errors, EvalErrorData{ZoneID: params.ID, Message: err.Error()})
			continue
		}

		// Step 3: Convert the zone to the frontend formats.
		m := z.Mesh()
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			ZoneID:   z.ID(),
			Color:    z.Color(),
			Alpha:    z.Alpha(),
		})
		result.Zones = append(result.Zones, z.JSON())
		if c, ok := z.SectionedAverage(doc.Sections); ok {
			result.Centroids = append(result.Centroids, CentroidData{
				ZoneID:   z.ID(),
				Position: [3]float64{c.X, c.Y, c.Z},
			})
		}
	}
	a.log.WithField("zones", len(result.Zones)).Debug("evaluated")
	return result
}

// Zones returns the exchange documents of the live zones.
func (a *App) Zones() []zone.JSON {
	a.mu.Lock()
	defer a.mu.Unlock()
	docs := []zone.JSON{}
	for _, z := range a.plugin.Zones() {
		docs = append(docs, z.JSON())
	}
	return docs
}

// Load replaces the live zones with docs, skipping any that fail to build.
func (a *App) Load(docs []zone.JSON) []EvalErrorData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTool()
	a.plugin.Clear()
	errs := []EvalErrorData{}
	for _, doc := range docs {
		if _, err := a.plugin.Load(doc); err != nil {
			errs = append(errs, EvalErrorData{ZoneID: doc.ID, Message: err.Error()})
		}
	}
	return errs
}

// solid builds the kernel prism of the live zone id.
func (a *App) solid(id string) (kernel.Solid, error) {
	z, ok := a.plugin.Zone(id)
	if !ok {
		return nil, fmt.Errorf("app: no zone %q", id)
	}
	g := z.Geometry()
	s, err := a.kernel.Prism(g.Footprint, g.Floor(), g.Ceiling())
	if err != nil {
		return nil, fmt.Errorf("app: zone %s: %w", id, err)
	}
	return s, nil
}

// ExportSTL writes the solid of the union of the given zones to path. With
// center set the solid is moved so its footprint is centered on the origin
// and its floor rests on y = 0.
func (a *App) ExportSTL(path string, center bool, ids ...string) error {
	if len(ids) == 0 {
		return errors.New("app: no zones to export")
	}
	a.mu.Lock()
	var solid kernel.Solid
	for _, id := range ids {
		s, err := a.solid(id)
		if err != nil {
			a.mu.Unlock()
			return err
		}
		if solid == nil {
			solid = s
		} else {
			solid = a.kernel.Union(solid, s)
		}
	}
	a.mu.Unlock()

	if center {
		min, max := solid.BoundingBox()
		solid = a.kernel.Translate(solid, -(min[0]+max[0])/2, -min[1], -(min[2]+max[2])/2)
	}
	m, err := a.kernel.ToMesh(solid)
	if err != nil {
		return fmt.Errorf("app: mesh: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := m.WriteSTL(f); err != nil {
		f.Close()
		return fmt.Errorf("app: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.log.WithField("path", path).WithField("triangles", m.TriangleCount()).Info("exported STL")
	return nil
}

// Overlaps reports whether the volumes of two live zones intersect.
func (a *App) Overlaps(id1, id2 string) (bool, error) {
	a.mu.Lock()
	s1, err := a.solid(id1)
	if err != nil {
		a.mu.Unlock()
		return false, err
	}
	s2, err := a.solid(id2)
	a.mu.Unlock()
	if err != nil {
		return false, err
	}

	// Touching or disjoint bounds never overlap.
	min1, max1 := s1.BoundingBox()
	min2, max2 := s2.BoundingBox()
	for i := range 3 {
		if min1[i] >= max2[i]-boundsEpsilon || min2[i] >= max1[i]-boundsEpsilon {
			return false, nil
		}
	}
	m, err := a.kernel.ToMesh(a.kernel.Intersection(s1, s2))
	if err != nil {
		return false, fmt.Errorf("app: mesh: %w", err)
	}
	return !m.IsEmpty(), nil
}

// Save writes every live zone to the attached store.
func (a *App) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store == nil {
		return ErrNoStore
	}
	for _, z := range a.plugin.Zones() {
		if err := a.store.Save(a.ctx, z.JSON()); err != nil {
			return err
		}
	}
	return nil
}

// Restore replaces the live zones with the contents of the attached store.
func (a *App) Restore() ([]EvalErrorData, error) {
	a.mu.Lock()
	s := a.store
	a.mu.Unlock()
	if s == nil {
		return nil, ErrNoStore
	}
	docs, err := s.List(a.ctx)
	if err != nil {
		return nil, err
	}
	return a.Load(docs), nil
}
