package config

import (
	"errors"
	"fmt"

	"github.com/chazu/zoner/pkg/scene"
)

type checkFunc func(conf *Config) error

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	checkFuncs := []checkFunc{
		checkColors,
		checkAlpha,
		checkPointer,
		checkLevel,
		checkKernel,
		checkEngine,
	}

	for _, checkFunc := range checkFuncs {
		if err := checkFunc(c); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	return nil
}

func checkColors(conf *Config) error {
	for _, c := range []string{conf.Zones.DefaultColor, conf.Zones.CreateColor} {
		if _, _, err := scene.ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

func checkAlpha(conf *Config) error {
	if a := conf.Zones.Alpha; a < 0 || a > 1 {
		return fmt.Errorf("zones.alpha %v out of range [0,1]", a)
	}
	return nil
}

func checkPointer(conf *Config) error {
	p := conf.Pointer
	if p.MoveTolerance <= 0 || conf.Zones.SnapRadius <= 0 {
		return errors.New("pointer.move_tolerance and zones.snap_radius must be positive")
	}
	if p.TapDelayMS <= 0 || p.LongPressDelayMS <= 0 {
		return errors.New("pointer delays must be positive")
	}
	return nil
}

func checkLevel(conf *Config) error {
	_, err := ParseLevel(conf.Log.Level)
	return err
}

func checkKernel(conf *Config) error {
	if conf.Kernel.MeshCells < 8 {
		return fmt.Errorf("kernel.mesh_cells %d too small", conf.Kernel.MeshCells)
	}
	return nil
}

func checkEngine(conf *Config) error {
	if conf.Engine.TimeoutMS <= 0 {
		return fmt.Errorf("engine.timeout_ms must be positive, got %d", conf.Engine.TimeoutMS)
	}
	return nil
}
