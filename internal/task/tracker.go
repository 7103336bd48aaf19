// Package task tracks progress through a chain of targets guarded by
// barriers. Reaching the current target advances the chain; touching an
// armed barrier sends it back one step.
package task

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"go.uber.org/zap"
)

var (
	ErrNoSteps         = errors.New("task: chain has no steps")
	ErrMissingTarget   = errors.New("task: step has no target")
	ErrBarrierMismatch = errors.New("task: barrier count does not match target count")
	ErrNoObjectVolume  = errors.New("task: object volume is required")
)

// Step is one link of the chain: the target to reach and the barriers armed
// while it is current.
type Step struct {
	Target   host.VolumeID   `yaml:"target"`
	Barriers []host.VolumeID `yaml:"barriers"`
}

type Env struct {
	Bounds  host.Bounds
	Haptics host.Haptics
	Audio   host.Audio
	Logger  *zap.Logger
}

type Config struct {
	// Object is the volume that travels with the manipulated object; it is
	// what collides with barriers.
	Object        host.VolumeID
	TargetHaptic  float64 `yaml:"target_haptic"`
	BarrierHaptic float64 `yaml:"barrier_haptic"`
}

func DefaultConfig() Config {
	return Config{TargetHaptic: 0.2, BarrierHaptic: 1.0}
}

type Tracker struct {
	steps []Step
	cfg   Config
	env   Env
	log   *zap.Logger

	index      int
	maxReached int
	collisions int
	collided   bool
}

// NewMultiBarrier builds a tracker whose steps may each arm several
// barriers.
func NewMultiBarrier(steps []Step, cfg Config, env Env) (*Tracker, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	if cfg.Object == "" {
		return nil, ErrNoObjectVolume
	}
	cp := make([]Step, len(steps))
	for i, s := range steps {
		if s.Target == "" {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrMissingTarget)
		}
		cp[i] = Step{Target: s.Target, Barriers: append([]host.VolumeID(nil), s.Barriers...)}
	}
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{steps: cp, cfg: cfg, env: env, log: log, index: 1, maxReached: 1}, nil
}

// NewSingleBarrier builds a tracker with at most one barrier per step. An
// empty barrier ID leaves that step unguarded.
func NewSingleBarrier(targets, barriers []host.VolumeID, cfg Config, env Env) (*Tracker, error) {
	if len(barriers) != len(targets) {
		return nil, fmt.Errorf("%d targets, %d barriers: %w", len(targets), len(barriers), ErrBarrierMismatch)
	}
	steps := make([]Step, len(targets))
	for i, t := range targets {
		steps[i].Target = t
		if barriers[i] != "" {
			steps[i].Barriers = []host.VolumeID{barriers[i]}
		}
	}
	return NewMultiBarrier(steps, cfg, env)
}

// Index is the 1-based current step; len(steps)+1 once complete.
func (t *Tracker) Index() int { return t.index }
func (t *Tracker) Len() int   { return len(t.steps) }

// MaxReached is the highest step ever made current, capped at Len.
func (t *Tracker) MaxReached() int { return t.maxReached }
func (t *Tracker) Collisions() int { return t.collisions }
func (t *Tracker) Complete() bool  { return t.index > len(t.steps) }

// CurrentTarget is the target to render as active.
func (t *Tracker) CurrentTarget() (host.VolumeID, bool) {
	if t.Complete() {
		return "", false
	}
	return t.steps[t.index-1].Target, true
}

// Armed returns the barriers currently able to cause a regression.
func (t *Tracker) Armed() []host.VolumeID {
	if t.Complete() {
		return nil
	}
	return t.steps[t.index-1].Barriers
}

// ObjectMoved evaluates the chain for the object's new position.
func (t *Tracker) ObjectMoved(pos mgl64.Vec3, anchor host.AnchorID) {
	if t.Complete() {
		return
	}
	if t.env.Bounds.Contains(t.steps[t.index-1].Target, pos) {
		t.advance(anchor)
		return
	}
	if t.collided {
		return
	}
	for _, b := range t.Armed() {
		if t.env.Bounds.Intersects(t.cfg.Object, b) {
			t.regress(anchor, b)
			return
		}
	}
}

func (t *Tracker) advance(anchor host.AnchorID) {
	t.index++
	t.maxReached = max(t.maxReached, min(t.index, len(t.steps)))
	t.collided = false
	t.env.Haptics.RequestHaptic(anchor, t.cfg.TargetHaptic)
	t.env.Audio.PlayCue(host.CueTargetReached)
	t.log.Debug("target reached", zap.Int("index", t.index-1), zap.Int("max", t.maxReached))
	if t.Complete() {
		t.log.Debug("chain complete", zap.Int("collisions", t.collisions))
	}
}

func (t *Tracker) regress(anchor host.AnchorID, barrier host.VolumeID) {
	t.index = max(1, t.index-1)
	t.collisions++
	t.collided = true
	t.env.Haptics.RequestHaptic(anchor, t.cfg.BarrierHaptic)
	t.env.Audio.PlayCue(host.CueBarrierHit)
	t.log.Debug("barrier hit",
		zap.String("barrier", string(barrier)),
		zap.Int("index", t.index),
		zap.Int("collisions", t.collisions))
}
