package lever

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("lever: invalid config")

type Config struct {
	// ShaftLength is the grippable part of the shaft, measured from the hilt.
	ShaftLength float64 `yaml:"shaft_length"`
	// LeverageK scales the hand separation at which rotation is no longer
	// attenuated: full rotation needs ShaftLength*LeverageK.
	LeverageK    float64 `yaml:"leverage_k"`
	BladeLength  float64 `yaml:"blade_length"`
	GroundHeight float64 `yaml:"ground_height"`
	DeadBand     float64 `yaml:"dead_band"`

	AngleGating    bool    `yaml:"angle_gating"`
	LoadAngle      float64 `yaml:"load_angle"`
	UnloadTilt     float64 `yaml:"unload_tilt"`
	TransferVolume float64 `yaml:"transfer_volume"`
	// IgnoreCollisions is how long a thrown-off load ignores collisions.
	IgnoreCollisions float64 `yaml:"ignore_collisions"`
}

func DefaultConfig() Config {
	return Config{
		ShaftLength:      0.9,
		LeverageK:        0.7,
		BladeLength:      1.25,
		GroundHeight:     0,
		DeadBand:         0.01,
		AngleGating:      true,
		LoadAngle:        45,
		UnloadTilt:       90,
		TransferVolume:   0.25,
		IgnoreCollisions: 0.2,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ShaftLength <= 0:
		return fmt.Errorf("shaft_length %.3f: %w", c.ShaftLength, ErrInvalidConfig)
	case c.LeverageK <= 0:
		return fmt.Errorf("leverage_k %.3f: %w", c.LeverageK, ErrInvalidConfig)
	case c.BladeLength < 0:
		return fmt.Errorf("blade_length %.3f: %w", c.BladeLength, ErrInvalidConfig)
	case c.DeadBand < 0:
		return fmt.Errorf("dead_band %.3f: %w", c.DeadBand, ErrInvalidConfig)
	case c.TransferVolume <= 0:
		return fmt.Errorf("transfer_volume %.3f: %w", c.TransferVolume, ErrInvalidConfig)
	case c.LoadAngle < 0 || c.LoadAngle > 180:
		return fmt.Errorf("load_angle %.1f: %w", c.LoadAngle, ErrInvalidConfig)
	case c.UnloadTilt < 0 || c.UnloadTilt > 180:
		return fmt.Errorf("unload_tilt %.1f: %w", c.UnloadTilt, ErrInvalidConfig)
	}
	return nil
}
