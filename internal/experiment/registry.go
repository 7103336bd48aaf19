package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/metrics"
	"github.com/san-kum/heft/internal/scenario"
	"github.com/san-kum/heft/internal/sim"
)

var ErrUnknownExperiment = errors.New("experiment: unknown experiment")

// Layout describes one experiment: how to furnish the world and the
// participant script that performs it.
type Layout struct {
	Name        string
	Description string
	// TwoHanded layouts use the lever model; P conditions fall back to
	// controllers for them.
	TwoHanded bool

	build  func(b *builder) error
	script func(cfg *config.Config, tracking bool) *scenario.Script
}

// Script returns the built-in script for cfg's condition.
func (l *Layout) Script(cfg *config.Config) *scenario.Script {
	return l.script(cfg, l.Tracking(cfg.ConditionValue()))
}

// Tracking reports whether cond runs in tracking mode on this layout.
func (l *Layout) Tracking(cond cd.Condition) bool {
	return cond.Tracking() && !l.TwoHanded
}

type Registry struct {
	layouts map[string]*Layout
}

func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]*Layout)}
	r.Register(&Layout{
		Name:        "cube",
		Description: "four-step pick and place, several barriers per step",
		build:       buildCube,
		script:      cubeScript,
	})
	r.Register(&Layout{
		Name:        "basic",
		Description: "three-step pick and place, one barrier per step",
		build:       buildBasic,
		script:      basicScript,
	})
	r.Register(&Layout{
		Name:        "shovel",
		Description: "two-handed shovel emptying a pile",
		TwoHanded:   true,
		build:       buildShovel,
		script:      shovelScript,
	})
	return r
}

func (r *Registry) Register(l *Layout) {
	r.layouts[l.Name] = l
}

func (r *Registry) Get(name string) (*Layout, error) {
	l, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownExperiment)
	}
	return l, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics drops the counters a layout can never move.
func (r *Registry) DefaultMetrics(name string) []sim.Metric {
	l, ok := r.layouts[name]
	if !ok {
		return metrics.Standard()
	}
	skip := map[string]bool{"loads_delivered": true}
	if l.TwoHanded {
		skip = map[string]bool{"targets_reached": true, "collision_count": true}
	}
	out := make([]sim.Metric, 0, 8)
	for _, m := range metrics.Standard() {
		if !skip[m.Name()] {
			out = append(out, m)
		}
	}
	return out
}
