package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/grab"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/lever"
	"github.com/san-kum/heft/internal/posemath"
	"github.com/san-kum/heft/internal/scenario"
	"github.com/san-kum/heft/internal/sim"
	"github.com/san-kum/heft/internal/task"
	"go.uber.org/zap"
)

// Experiment is one assembled run: a world, a scripted participant and the
// grab core between them. It implements sim.Engine.
type Experiment struct {
	layout   *Layout
	cfg      *config.Config
	cond     cd.Condition
	tracking bool
	log      *zap.Logger

	world       *host.World
	fx          *host.Dispatcher
	profiles    *cd.Registry
	participant *scenario.Participant

	primary host.AnchorID
	ctrl    *grab.Controller
	tracker *task.Tracker
	lever   *lever.Strategy

	effects   int
	simulator *sim.Simulator
}

// New assembles the experiment cfg names. A nil script runs the layout's
// built-in script.
func New(reg *Registry, cfg *config.Config, script *scenario.Script, log *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := reg.Get(cfg.Experiment)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	cond := cfg.ConditionValue()
	log = log.With(zap.String("experiment", layout.Name), zap.String("condition", string(cond)))

	profiles := cd.NewRegistry()
	for i, v := range cfg.Profiles {
		if err := profiles.Register(i, v); err != nil {
			return nil, err
		}
	}
	if err := profiles.Select(cond.Intensity()); err != nil {
		return nil, err
	}

	if script == nil {
		script = layout.Script(cfg)
	}
	pcfg := cfg.Participant
	pcfg.Seed = cfg.Seed
	participant, err := scenario.NewParticipant(script, pcfg, log)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	e := &Experiment{
		layout:      layout,
		cfg:         cfg,
		cond:        cond,
		tracking:    layout.Tracking(cond),
		log:         log,
		world:       host.NewWorld(),
		fx:          host.NewDispatcher(),
		profiles:    profiles,
		participant: participant,
	}
	b := &builder{
		cfg:      cfg,
		tracking: e.tracking,
		world:    e.world,
		fx:       e.fx,
		log:      log,
		env: grab.Env{
			Tracking: participant,
			Input:    participant,
			Bounds:   e.world,
			Scene:    e.world,
			Effects:  e.fx,
			Profiles: profiles,
			Logger:   log,
		},
	}
	if err := layout.build(b); err != nil {
		return nil, fmt.Errorf("build %s: %w", layout.Name, err)
	}
	e.primary, e.ctrl, e.tracker, e.lever = b.primary, b.ctrl, b.tracker, b.lever
	e.fx.Flush(e.world)

	log.Info("experiment ready",
		zap.String("script", script.Name),
		zap.Int("actions", len(script.Actions)),
		zap.Bool("tracking", e.tracking),
		zap.String("intensity", string(cond.Intensity())))
	return e, nil
}

// Setup attaches metrics to the experiment's simulator.
func (e *Experiment) Setup(metrics []sim.Metric) {
	e.simulator = sim.New()
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:           e.cfg.Dt,
		Duration:     e.cfg.Duration,
		LogInterval:  e.cfg.LogInterval,
		StopWhenDone: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	res, err := e.simulator.Run(ctx, e, e.SimConfig())
	if err != nil {
		return res, err
	}
	e.log.Info("experiment finished",
		zap.Float64("elapsed", res.Elapsed),
		zap.Bool("complete", res.Complete),
		zap.Int("timeouts", e.participant.Timeouts()))
	return res, nil
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

// Step runs one frame: input, then the core, then the queued effects.
func (e *Experiment) Step(dt float64) {
	e.participant.Update(dt, e.ctrl.Pose())
	e.ctrl.Tick(dt)
	// the hand that last grabbed is the primary one
	if sess, ok := e.ctrl.Session(); ok {
		e.primary = sess.Anchor
	}
	e.effects += len(e.fx.Flush(e.world))
}

func (e *Experiment) Sample(t float64) sim.LogEntry {
	pose := e.ctrl.Pose()
	sec := e.primary.Secondary()
	entry := sim.LogEntry{
		Time:             t,
		Condition:        string(e.cond),
		Primary:          e.primary.Hand().String(),
		State:            e.ctrl.State().String(),
		PrimaryTracked:   e.participant.AnchorPose(e.primary).Pos,
		SecondaryTracked: e.participant.AnchorPose(sec).Pos,
		PrimaryVisible:   e.ctrl.VisibleAnchor(e.primary).Pos,
		SecondaryVisible: e.ctrl.VisibleAnchor(sec).Pos,
		Head:             e.participant.HeadPose().Pos,
		EndEffector:      pose.Pos,
		Target:           e.ctrl.Target().Pos,
		GrabCount:        e.ctrl.GrabCount(),
		Complete:         e.Complete(),
	}
	if e.tracker != nil {
		entry.TargetsReached = e.tracker.MaxReached()
		entry.TaskIndex = e.tracker.Index()
		entry.Collisions = e.tracker.Collisions()
	}
	if e.lever != nil {
		loader := e.lever.Loader()
		entry.EndEffector = lever.BladeTip(pose, e.cfg.Lever)
		entry.Loaded = loader.Loaded()
		entry.Delivered = loader.Delivered()
		entry.PileRemaining = loader.Pile().Remaining()
		if e.ctrl.Grabbing() {
			entry.SecondaryVisible = e.lever.SecondaryGrip(pose)
		}
	}
	return entry
}

// Done reports that the task is complete or the script has run out.
func (e *Experiment) Done() bool {
	return e.Complete() || e.participant.Done()
}

// Complete reports task completion: every target reached, or the pile
// emptied and nothing left on the blade.
func (e *Experiment) Complete() bool {
	switch {
	case e.tracker != nil:
		return e.tracker.Complete()
	case e.lever != nil:
		l := e.lever.Loader()
		return l.Pile().Complete() && !l.Loaded()
	}
	return false
}

// VisibleAnchors returns where both hands of the primary kind are drawn.
func (e *Experiment) VisibleAnchors() map[host.AnchorID]posemath.Pose {
	sec := e.primary.Secondary()
	out := map[host.AnchorID]posemath.Pose{
		e.primary: e.ctrl.VisibleAnchor(e.primary),
		sec:       e.ctrl.VisibleAnchor(sec),
	}
	if e.lever != nil && e.ctrl.Grabbing() {
		p := out[sec]
		p.Pos = e.lever.SecondaryGrip(e.ctrl.Pose())
		out[sec] = p
	}
	return out
}

func (e *Experiment) Layout() *Layout                    { return e.layout }
func (e *Experiment) Condition() cd.Condition            { return e.cond }
func (e *Experiment) Tracking() bool                     { return e.tracking }
func (e *Experiment) Controller() *grab.Controller       { return e.ctrl }
func (e *Experiment) Tracker() *task.Tracker             { return e.tracker }
func (e *Experiment) Lever() *lever.Strategy             { return e.lever }
func (e *Experiment) Participant() *scenario.Participant { return e.participant }
func (e *Experiment) World() *host.World                 { return e.world }

// Effects is the number of side effects delivered to the world so far.
func (e *Experiment) Effects() int { return e.effects }
