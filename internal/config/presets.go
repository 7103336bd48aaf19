package config

import (
	"sort"

	"github.com/san-kum/heft/internal/cd"
)

func preset(experiment string, cond cd.Condition, edit func(*Config)) *Config {
	c := DefaultConfig()
	c.Experiment = experiment
	c.Condition = string(cond)
	if edit != nil {
		edit(c)
	}
	return c
}

var Presets = map[string]map[string]*Config{
	"cube": {
		"baseline": preset("cube", cd.C0, nil),
		"subtle":   preset("cube", cd.C1, nil),
		"heavy":    preset("cube", cd.C2, nil),
		"props":    preset("cube", cd.P1, nil),
		"shaky": preset("cube", cd.C1, func(c *Config) {
			c.Participant.Jitter = 0.002
			c.Seed = 7
		}),
	},
	"basic": {
		"baseline": preset("basic", cd.C0, nil),
		"heavy":    preset("basic", cd.C2, nil),
	},
	"shovel": {
		"baseline": preset("shovel", cd.C0, nil),
		"heavy":    preset("shovel", cd.C2, nil),
		"long_shaft": preset("shovel", cd.C1, func(c *Config) {
			c.Lever.ShaftLength = 1.2
		}),
		"big_pile": preset("shovel", cd.C0, func(c *Config) {
			c.PileVolume = 2
			c.Duration = 120
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(experiment, name string) *Config {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	cfg, ok := experimentPresets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets(experiment string) []string {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(experimentPresets))
	for name := range experimentPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
