package app

import (
	"errors"
	"fmt"

	"github.com/chazu/zoner/pkg/control"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// TouchData is one contact point of a frontend touch event.
type TouchData struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// PointerEventData is a canvas input event forwarded by the frontend. Kind
// is the DOM event name ("mousedown", "touchmove", ...). Button counts from
// 1 for the primary button.
type PointerEventData struct {
	Kind    string      `json:"kind"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Button  int         `json:"button"`
	Touches []TouchData `json:"touches"`
	Changed []TouchData `json:"changed"`
}

// CreateRequest starts interactive construction. Mode is "axis-aligned" or
// "polysurface" and Input is "mouse" (the default) or "touch". An empty
// Color or nil Alpha takes the configured default.
type CreateRequest struct {
	Mode     string   `json:"mode"`
	Input    string   `json:"input"`
	Altitude float64  `json:"altitude"`
	Height   float64  `json:"height"`
	Color    string   `json:"color"`
	Alpha    *float64 `json:"alpha"`
}

// MarkerData is a visible construction marker.
type MarkerData struct {
	Color       string     `json:"color"`
	Position    [3]float64 `json:"position"`
	Highlighted bool       `json:"highlighted"`
}

// WireData is a visible construction wire.
type WireData struct {
	Color string     `json:"color"`
	Start [3]float64 `json:"start"`
	End   [3]float64 `json:"end"`
}

// HandleData is a vertex handle of the edit tool.
type HandleData struct {
	Color     string     `json:"color"`
	Position  [3]float64 `json:"position"`
	Clickable bool       `json:"clickable"`
	Dragging  bool       `json:"dragging"`
}

// IndicatorData is the state of the pointer lens or the long-press circle.
type IndicatorData struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// AidsData is everything the frontend draws on top of the meshes.
type AidsData struct {
	Tool         string        `json:"tool"`
	Zone         string        `json:"zone,omitempty"`
	Markers      []MarkerData  `json:"markers"`
	Wires        []WireData    `json:"wires"`
	Handles      []HandleData  `json:"handles"`
	Lens         IndicatorData `json:"lens"`
	Circle       IndicatorData `json:"circle"`
	CameraActive bool          `json:"cameraActive"`
}

// tool is an interactive control owned by the App.
type tool interface {
	Active() bool
	Deactivate()
}

type activeTool struct {
	name string
	zone string
	ctl  tool
}

var errUnknownEvent = errors.New("app: unknown pointer event")

func parseKind(name string) (pointer.EventKind, error) {
	for k := pointer.MouseDown; k <= pointer.TouchEnd; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q", errUnknownEvent, name)
}

func parseMode(name string) (control.Mode, error) {
	for _, m := range []control.Mode{control.ModeAxisAligned, control.ModePolysurface} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("app: unknown create mode %q", name)
}

func touches(in []TouchData) []pointer.Touch {
	out := make([]pointer.Touch, len(in))
	for i, t := range in {
		out[i] = pointer.Touch{ID: t.ID, Pos: v2.Vec{X: t.X, Y: t.Y}}
	}
	return out
}

// PointerEvent feeds one canvas event to the active tool.
func (a *App) PointerEvent(ev PointerEventData) error {
	kind, err := parseKind(ev.Kind)
	if err != nil {
		return err
	}
	e := pointer.Event{
		Kind:    kind,
		Pos:     v2.Vec{X: ev.X, Y: ev.Y},
		Button:  pointer.Button(ev.Button),
		Touches: touches(ev.Touches),
		Changed: touches(ev.Changed),
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hub.Dispatch(e)
	return nil
}

// transport returns the point selection for input. Touch timers run under
// a.mu like pointer events.
func (a *App) transport(input string) (pointer.Transport, error) {
	switch input {
	case "", "mouse":
		return &pointer.MouseTransport{Source: a.hub, Camera: a.camera, Config: a.cfg.Gestures()}, nil
	case "touch":
		return &pointer.TouchTransport{
			Source:    a.hub,
			Camera:    a.camera,
			Control:   a.cameraSwitch,
			Circle:    a.circle,
			Scheduler: pointer.SerialScheduler{L: &a.mu},
			Config:    a.cfg.Gestures(),
		}, nil
	default:
		return nil, fmt.Errorf("app: unknown input %q", input)
	}
}

// StartCreate replaces the active tool with interactive zone construction.
// Every completed zone joins the live zones.
func (a *App) StartCreate(req CreateRequest) error {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	transport, err := a.transport(req.Input)
	if err != nil {
		return err
	}
	opts := a.cfg.CreateOptions(mode)
	opts.Plugin = a.plugin
	opts.Transport = transport
	opts.Overlay = a.overlay
	opts.Lens = a.lens
	c, err := control.NewCreateControl(opts)
	if err != nil {
		return err
	}
	act := a.cfg.CreateDefaults(req.Altitude, req.Height)
	if req.Color != "" {
		act.Color = req.Color
	}
	if req.Alpha != nil {
		act.Alpha = req.Alpha
	}

	a.stopTool()
	if err := c.Activate(act); err != nil {
		return err
	}
	c.On(control.EventZoneEnd, func(p any) {
		a.log.WithField("id", p.(*zone.Zone).ID()).Info("zone created")
	})
	a.tool = activeTool{name: "create", ctl: c}
	a.log.WithField("mode", mode.String()).WithField("input", req.Input).Debug("create started")
	return nil
}

// StartEdit replaces the active tool with vertex handles on zone id.
func (a *App) StartEdit(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	z, ok := a.plugin.Zone(id)
	if !ok {
		return fmt.Errorf("app: no zone %q", id)
	}
	a.stopTool()
	c, err := control.NewEditControl(z, control.EditConfig{Overlay: a.overlay, Lens: a.lens})
	if err != nil {
		return err
	}
	c.On(control.EventEdited, func(any) { a.log.WithField("id", id).Info("zone edited") })
	a.tool = activeTool{name: "edit", zone: id, ctl: c}
	return nil
}

// StartTranslate replaces the active tool with dragging zone id.
func (a *App) StartTranslate(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	z, ok := a.plugin.Zone(id)
	if !ok {
		return fmt.Errorf("app: no zone %q", id)
	}
	a.stopTool()
	c, err := control.NewTranslateControl(z, control.TranslateConfig{
		Source:  a.hub,
		Camera:  a.camera,
		Control: a.cameraSwitch,
		Lens:    a.lens,
		Mouse:   true,
		Touch:   true,
	})
	if err != nil {
		return err
	}
	c.On(control.EventTranslated, func(any) { a.log.WithField("id", id).Info("zone translated") })
	a.tool = activeTool{name: "translate", zone: id, ctl: c}
	return nil
}

// StopInteraction deactivates the active tool, if any.
func (a *App) StopInteraction() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTool()
}

func (a *App) stopTool() {
	if a.tool.ctl != nil {
		a.tool.ctl.Deactivate()
	}
	a.tool = activeTool{}
	a.lens.SetVisible(false)
	a.circle.Stop()
	a.cameraSwitch.SetActive(true)
}

// Aids returns the visual aids of the active tool.
func (a *App) Aids() AidsData {
	a.mu.Lock()
	defer a.mu.Unlock()
	var d AidsData
	if t := a.tool; t.ctl != nil && t.ctl.Active() {
		d.Tool, d.Zone = t.name, t.zone
	}
	d.Markers, d.Wires, d.Handles = a.overlay.snapshot()
	d.Lens = a.lens.data()
	d.Circle = a.circle.data()
	d.CameraActive = a.cameraSwitch.active
	return d
}

// Meshes returns every visible scene mesh, zones and construction previews
// alike. Preview meshes carry an empty ZoneID.
func (a *App) Meshes() []MeshData {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []MeshData{}
	for _, id := range a.scene.IDs() {
		mm, ok := a.scene.Get(id)
		if !ok {
			continue
		}
		spec := mm.Spec()
		if !spec.Visible || spec.Mesh == nil {
			continue
		}
		d := MeshData{
			Vertices: spec.Mesh.Vertices,
			Normals:  spec.Mesh.Normals,
			Indices:  spec.Mesh.Indices,
			Color:    spec.Material.Diffuse.Hex(),
			Alpha:    spec.Material.Alpha,
		}
		if _, ok := a.plugin.Zone(id); ok {
			d.ZoneID = id
		}
		out = append(out, d)
	}
	return out
}
