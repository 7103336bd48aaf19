package optim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/heft/internal/config"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

var setters = map[string]func(*config.Config, float64){
	"grab.release_distance":   func(c *config.Config, v float64) { c.Grab.ReleaseDistance = v },
	"grab.throw_damping":      func(c *config.Config, v float64) { c.Grab.ThrowDamping = v },
	"lever.shaft_length":      func(c *config.Config, v float64) { c.Lever.ShaftLength = v },
	"lever.leverage_k":        func(c *config.Config, v float64) { c.Lever.LeverageK = v },
	"lever.dead_band":         func(c *config.Config, v float64) { c.Lever.DeadBand = v },
	"lever.load_angle":        func(c *config.Config, v float64) { c.Lever.LoadAngle = v },
	"lever.transfer_volume":   func(c *config.Config, v float64) { c.Lever.TransferVolume = v },
	"participant.hand_speed":  func(c *config.Config, v float64) { c.Participant.HandSpeed = v },
	"participant.gain":        func(c *config.Config, v float64) { c.Participant.Gain = v },
	"participant.jitter":      func(c *config.Config, v float64) { c.Participant.Jitter = v },
	"pile_volume":             func(c *config.Config, v float64) { c.PileVolume = v },
	"task.barrier_haptic":     func(c *config.Config, v float64) { c.Task.BarrierHaptic = v },
	"participant.tolerance":   func(c *config.Config, v float64) { c.Participant.Tolerance = v },
	"participant.turn_speed":  func(c *config.Config, v float64) { c.Participant.TurnSpeed = v },
	"participant.timeout":     func(c *config.Config, v float64) { c.Participant.Timeout = v },
	"lever.ignore_collisions": func(c *config.Config, v float64) { c.Lever.IgnoreCollisions = v },
}

// Params lists the settable parameter names.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets one named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownParam)
	}
	set(cfg, v)
	return nil
}
