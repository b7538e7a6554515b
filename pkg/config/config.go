// Package config loads zoner settings from TOML.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/chazu/zoner/pkg/control"
	"github.com/chazu/zoner/pkg/engine"
	"github.com/chazu/zoner/pkg/pointer"
	"github.com/chazu/zoner/pkg/zone"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	Zones   ZonesConfig   `toml:"zones"`
	Pointer PointerConfig `toml:"pointer"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
	Kernel  KernelConfig  `toml:"kernel"`
	Engine  EngineConfig  `toml:"engine"`
}

// ZonesConfig holds zone creation defaults.
type ZonesConfig struct {
	DefaultColor       string  `toml:"default_color"`
	CreateColor        string  `toml:"create_color"`
	Alpha              float64 `toml:"alpha"`
	SnapRadius         float64 `toml:"snap_radius"`
	PreviewMinDistance float64 `toml:"preview_min_distance"`
}

// PointerConfig holds gesture thresholds. Delays are in milliseconds.
type PointerConfig struct {
	MoveTolerance    float64 `toml:"move_tolerance"`
	TapDelayMS       int     `toml:"tap_delay_ms"`
	LongPressDelayMS int     `toml:"long_press_delay_ms"`
}

// LogConfig selects the logging level.
type LogConfig struct {
	Level string `toml:"level"`
}

// StoreConfig locates the zone database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// KernelConfig tunes solid export.
type KernelConfig struct {
	MeshCells int `toml:"mesh_cells"`
}

// EngineConfig bounds script evaluation.
type EngineConfig struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Zones: ZonesConfig{
			DefaultColor:       zone.DefaultColor,
			CreateColor:        control.DefaultCreateColor,
			Alpha:              zone.DefaultAlpha,
			SnapRadius:         control.DefaultSnapRadius,
			PreviewMinDistance: control.DefaultPreviewMinDistance,
		},
		Pointer: PointerConfig{
			MoveTolerance:    pointer.DefaultMoveTolerance,
			TapDelayMS:       int(pointer.DefaultTapDelay / time.Millisecond),
			LongPressDelayMS: int(pointer.DefaultLongPressDelay / time.Millisecond),
		},
		Log:    LogConfig{Level: "info"},
		Store:  StoreConfig{Path: "zones.db"},
		Kernel: KernelConfig{MeshCells: 200},
		Engine: EngineConfig{TimeoutMS: int(engine.DefaultTimeout / time.Millisecond)},
	}
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Encode renders cfg as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Gestures converts the gesture thresholds for package pointer.
func (c Config) Gestures() pointer.Config {
	return pointer.Config{
		MoveTolerance:  c.Pointer.MoveTolerance,
		TapDelay:       time.Duration(c.Pointer.TapDelayMS) * time.Millisecond,
		LongPressDelay: time.Duration(c.Pointer.LongPressDelayMS) * time.Millisecond,
	}
}

// CreateOptions returns the construction tuning for a CreateControl in
// mode. The caller fills in the plugin, transport and overlay.
func (c Config) CreateOptions(mode control.Mode) control.Options {
	return control.Options{
		Mode:               mode,
		SnapRadius:         c.Zones.SnapRadius,
		PreviewMinDistance: c.Zones.PreviewMinDistance,
		Logger:             c.NamedLogger("control"),
	}
}

// CreateDefaults returns an activation with the configured color and alpha.
func (c Config) CreateDefaults(altitude, height float64) control.CreateConfig {
	return control.CreateConfig{
		Altitude: altitude,
		Height:   height,
		Color:    c.Zones.CreateColor,
		Alpha:    zone.Alpha(c.Zones.Alpha),
	}
}

// StorePath returns the store path with a leading "~" expanded to the
// user's home directory.
func (c Config) StorePath() (string, error) {
	path, err := homedir.Expand(c.Store.Path)
	if err != nil {
		return "", fmt.Errorf("config: store.path: %w", err)
	}
	return path, nil
}

// EvalTimeout returns the script evaluation time limit.
func (c Config) EvalTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutMS) * time.Millisecond
}
