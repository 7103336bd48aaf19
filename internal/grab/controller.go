package grab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Highlighted
	Grabbing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Highlighted:
		return "highlighted"
	case Grabbing:
		return "grabbing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ProfileSource hands out the active C/D profile. *cd.Registry satisfies it.
type ProfileSource interface {
	Profile(loaded bool) *cd.Profile
}

// Listener is told where the object went after every grabbing tick.
type Listener interface {
	ObjectMoved(pos mgl64.Vec3, anchor host.AnchorID)
}

type Env struct {
	Tracking host.Tracking
	Input    host.Input
	Bounds   host.Bounds
	Scene    host.Scene
	Effects  host.Effects
	Profiles ProfileSource
	Logger   *zap.Logger
}

type Config struct {
	Object   host.ObjectID
	Boundary host.VolumeID
	Anchors  []host.AnchorID

	// Tracking mode: the object is kinematic for its whole life and follows
	// Tracked while it is not grabbed.
	Tracking bool
	Tracked  host.ObjectID

	ReleaseDistance float64 `yaml:"release_distance"`
	ThrowDamping    float64 `yaml:"throw_damping"`
	HapticSeconds   float64 `yaml:"haptic_seconds"`
}

func DefaultConfig() Config {
	return Config{
		ReleaseDistance: 0.5,
		ThrowDamping:    0.5,
		HapticSeconds:   0.1,
	}
}

type Controller struct {
	cfg      Config
	env      Env
	strategy Strategy
	log      *zap.Logger

	state     State
	session   *Session
	pose      posemath.Pose
	target    posemath.Pose
	velocity  posemath.Velocity
	travel    mgl64.Vec3
	grabs     int
	listeners []Listener
}

// New builds a controller for one object, displayed at initial.
func New(cfg Config, env Env, strategy Strategy, initial posemath.Pose) (*Controller, error) {
	if strategy == nil {
		return nil, ErrNoStrategy
	}
	if len(cfg.Anchors) == 0 {
		return nil, fmt.Errorf("object %q: %w", cfg.Object, ErrNoAnchors)
	}
	if cfg.Tracking && cfg.Tracked == "" {
		return nil, fmt.Errorf("object %q: %w", cfg.Object, ErrNoTrackedObject)
	}
	if ps, ok := strategy.(PairedStrategy); ok && ps.RequiresSecondary() {
		for _, a := range cfg.Anchors {
			if a.Secondary() == host.NoAnchor {
				return nil, fmt.Errorf("anchor %s: %w", a, ErrUnpairedAnchor)
			}
		}
	}
	switch {
	case env.Tracking == nil:
		return nil, fmt.Errorf("tracking: %w", ErrMissingCollaborator)
	case env.Input == nil:
		return nil, fmt.Errorf("input: %w", ErrMissingCollaborator)
	case env.Bounds == nil:
		return nil, fmt.Errorf("bounds: %w", ErrMissingCollaborator)
	case env.Scene == nil:
		return nil, fmt.Errorf("scene: %w", ErrMissingCollaborator)
	case env.Effects == nil:
		return nil, fmt.Errorf("effects: %w", ErrMissingCollaborator)
	case env.Profiles == nil:
		return nil, fmt.Errorf("profiles: %w", ErrMissingCollaborator)
	}

	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		cfg:      cfg,
		env:      env,
		strategy: strategy,
		log:      log.With(zap.String("object", string(cfg.Object))),
		pose:     initial,
		target:   initial,
	}
	if cfg.Tracking {
		env.Effects.SetKinematic(cfg.Object, true)
	}
	return c, nil
}

func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Controller) State() State                { return c.state }
func (c *Controller) Pose() posemath.Pose         { return c.pose }
func (c *Controller) Target() posemath.Pose       { return c.target }
func (c *Controller) Velocity() posemath.Velocity { return c.velocity }
func (c *Controller) TravelDirection() mgl64.Vec3 { return c.travel }
func (c *Controller) GrabCount() int              { return c.grabs }
func (c *Controller) Grabbing() bool              { return c.session != nil }
func (c *Controller) Strategy() Strategy          { return c.strategy }
func (c *Controller) Config() Config              { return c.cfg }

// Session returns a copy of the active grab session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// VisibleAnchor is where the anchor should be drawn: attached to the object
// at its grip while grabbing, at its tracked pose otherwise.
func (c *Controller) VisibleAnchor(a host.AnchorID) posemath.Pose {
	if c.session != nil && c.session.Anchor == a {
		return posemath.Compose(c.pose, c.session.Grip)
	}
	return c.env.Tracking.AnchorPose(a)
}

// Tick advances the controller by one frame.
func (c *Controller) Tick(dt float64) {
	if c.session != nil {
		if c.shouldRelease() {
			c.stop()
			return
		}
		c.continueGrab(dt)
		return
	}

	touching := c.touching()
	switch {
	case len(touching) > 0 && c.state == Idle:
		c.state = Highlighted
		c.log.Debug("highlight", zap.Stringer("anchor", touching[0]))
	case len(touching) == 0 && c.state == Highlighted:
		c.state = Idle
	}
	for _, a := range touching {
		if !a.HasActivation() || c.env.Input.ActivationPressed(a) {
			c.start(a)
			return
		}
	}

	if c.cfg.Tracking {
		c.advance(c.env.Tracking.ObjectPose(c.cfg.Tracked), c.env.Profiles.Profile(false), dt)
	}
}

func (c *Controller) touching() []host.AnchorID {
	var out []host.AnchorID
	for _, a := range c.cfg.Anchors {
		if c.env.Bounds.Contains(c.cfg.Boundary, c.env.Tracking.AnchorPose(a).Pos) {
			out = append(out, a)
		}
	}
	return out
}

func (c *Controller) frame(a, sec host.AnchorID, dt float64) Frame {
	f := Frame{
		Primary: c.env.Tracking.AnchorPose(a),
		Head:    c.env.Tracking.HeadPose(),
		Object:  c.pose,
		Dt:      dt,
	}
	if sec != host.NoAnchor {
		f.Secondary = c.env.Tracking.AnchorPose(sec)
	}
	if c.cfg.Tracked != "" {
		f.Tracked = c.env.Tracking.ObjectPose(c.cfg.Tracked)
	}
	return f
}

func (c *Controller) start(a host.AnchorID) {
	sec := a.Secondary()
	f := c.frame(a, sec, 0)
	s := &Session{
		Anchor:          a,
		Secondary:       sec,
		ObjectOrigin:    c.pose,
		AnchorOrigin:    f.Primary,
		SecondaryOrigin: f.Secondary,
		HeadOrigin:      f.Head,
		Offset:          posemath.Relative(f.Primary, c.pose),
		Grip:            posemath.Relative(c.pose, f.Primary),
	}
	c.session = s
	c.state = Grabbing
	c.velocity = posemath.Velocity{}
	c.grabs++
	c.env.Effects.RequestHaptic(a, c.cfg.HapticSeconds)
	if !c.cfg.Tracking {
		c.env.Effects.SetKinematic(c.cfg.Object, true)
	}
	if st, ok := c.strategy.(Starter); ok {
		st.Start(s, f)
	}
	c.log.Debug("grab start", zap.Stringer("anchor", a), zap.Int("grabs", c.grabs))
}

func (c *Controller) shouldRelease() bool {
	a := c.session.Anchor
	if a.HasActivation() {
		return !c.env.Input.ActivationPressed(a)
	}
	ref := c.pose.Pos
	if c.cfg.Tracked != "" {
		ref = c.env.Tracking.ObjectPose(c.cfg.Tracked).Pos
	}
	return ref.Sub(c.env.Tracking.AnchorPose(a).Pos).Len() > c.cfg.ReleaseDistance
}

func (c *Controller) stop() {
	s := c.session
	if st, ok := c.strategy.(Stopper); ok {
		st.Stop(s)
	}
	c.env.Effects.RequestHaptic(s.Anchor, c.cfg.HapticSeconds)
	if !c.cfg.Tracking {
		c.env.Effects.SetKinematic(c.cfg.Object, false)
		c.env.Effects.ApplyImpulse(c.cfg.Object, c.travel.Mul(c.velocity.Linear*c.cfg.ThrowDamping))
	}
	c.log.Debug("grab stop",
		zap.Stringer("anchor", s.Anchor),
		zap.Int("ticks", s.Ticks),
		zap.Float64("speed", c.velocity.Linear))
	c.session = nil
	c.state = Idle
}

func (c *Controller) continueGrab(dt float64) {
	s := c.session
	p := c.profile()
	target := c.strategy.Target(s, c.frame(s.Anchor, s.Secondary, dt), p)
	c.advance(target, p, dt)
	if h, ok := c.strategy.(MoveHook); ok && h.Moved(s, c.pose, c.velocity, c.travel) {
		c.velocity = posemath.Velocity{}
	}
	s.Ticks++
	for _, l := range c.listeners {
		l.ObjectMoved(c.pose.Pos, s.Anchor)
	}
}

func (c *Controller) profile() *cd.Profile {
	loaded := false
	if lr, ok := c.strategy.(LoadReporter); ok {
		loaded = lr.Loaded()
	}
	return c.env.Profiles.Profile(loaded)
}

func (c *Controller) advance(target posemath.Pose, p *cd.Profile, dt float64) {
	if dt <= 0 {
		return
	}
	next := posemath.NextPose(c.pose, target, c.velocity, p, dt)
	c.velocity = posemath.ComputeVelocity(c.pose, next, dt)
	c.travel = posemath.SafeNormalize(next.Pos.Sub(c.pose.Pos))
	c.pose = next
	c.target = target
	c.env.Scene.Place(c.cfg.Object, next)
}
