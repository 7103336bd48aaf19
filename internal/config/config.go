package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/lever"
	"github.com/san-kum/heft/internal/scenario"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0 / 72
	DefaultDuration    = 60.0
	DefaultLogInterval = 0.1
	DefaultPileVolume  = 1.0
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Experiment  string  `yaml:"experiment"`
	Condition   string  `yaml:"condition"`
	Script      string  `yaml:"script,omitempty"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	LogInterval float64 `yaml:"log_interval"`
	Seed        int64   `yaml:"seed"`

	Grab        GrabConfig      `yaml:"grab"`
	Task        TaskConfig      `yaml:"task"`
	Lever       lever.Config    `yaml:"lever"`
	PileVolume  float64         `yaml:"pile_volume"`
	Participant scenario.Config `yaml:"participant"`

	// Profiles overrides or adds C/D variants by intensity name.
	Profiles map[cd.Intensity]cd.Variant `yaml:"profiles,omitempty"`
}

type GrabConfig struct {
	ReleaseDistance float64 `yaml:"release_distance"`
	ThrowDamping    float64 `yaml:"throw_damping"`
	HapticSeconds   float64 `yaml:"haptic_seconds"`
}

type TaskConfig struct {
	TargetHaptic  float64 `yaml:"target_haptic"`
	BarrierHaptic float64 `yaml:"barrier_haptic"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment:  "cube",
		Condition:   string(cd.C0),
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		LogInterval: DefaultLogInterval,
		Grab: GrabConfig{
			ReleaseDistance: 0.5,
			ThrowDamping:    0.5,
			HapticSeconds:   0.1,
		},
		Task: TaskConfig{
			TargetHaptic:  0.2,
			BarrierHaptic: 1.0,
		},
		Lever:       lever.DefaultConfig(),
		PileVolume:  DefaultPileVolume,
		Participant: scenario.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges. Experiment names are checked by the experiment
// registry.
func (c *Config) Validate() error {
	if _, err := cd.ParseCondition(c.Condition); err != nil {
		return fmt.Errorf("condition: %w", err)
	}
	switch {
	case c.Experiment == "":
		return fmt.Errorf("experiment is empty: %w", ErrInvalid)
	case c.Dt <= 0:
		return fmt.Errorf("dt %v: %w", c.Dt, ErrInvalid)
	case c.Duration <= 0:
		return fmt.Errorf("duration %v: %w", c.Duration, ErrInvalid)
	case c.LogInterval < 0:
		return fmt.Errorf("log_interval %v: %w", c.LogInterval, ErrInvalid)
	case c.Grab.ReleaseDistance <= 0:
		return fmt.Errorf("grab.release_distance %v: %w", c.Grab.ReleaseDistance, ErrInvalid)
	case c.Grab.ThrowDamping < 0:
		return fmt.Errorf("grab.throw_damping %v: %w", c.Grab.ThrowDamping, ErrInvalid)
	case c.PileVolume <= 0:
		return fmt.Errorf("pile_volume %v: %w", c.PileVolume, ErrInvalid)
	case c.Participant.HandSpeed <= 0:
		return fmt.Errorf("participant.hand_speed %v: %w", c.Participant.HandSpeed, ErrInvalid)
	}
	if err := c.Lever.Validate(); err != nil {
		return fmt.Errorf("lever: %w", err)
	}
	for i, v := range c.Profiles {
		for _, p := range []*cd.Profile{v.Normal, v.Loaded} {
			if p == nil {
				continue
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("profiles.%s: %w", i, err)
			}
		}
	}
	return nil
}

// ConditionValue returns the parsed condition. Call Validate first.
func (c *Config) ConditionValue() cd.Condition {
	cond, err := cd.ParseCondition(c.Condition)
	if err != nil {
		return cd.C0
	}
	return cond
}
