package grab

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"

	. "github.com/onsi/gomega"
)

const dt = 0.02

type rig struct {
	anchors map[host.AnchorID]posemath.Pose
	pressed map[host.AnchorID]bool
	head    posemath.Pose
	tracked map[host.ObjectID]posemath.Pose
}

func newRig() *rig {
	far := posemath.At(mgl64.Vec3{5, 5, 5})
	return &rig{
		anchors: map[host.AnchorID]posemath.Pose{
			host.LeftController: far, host.RightController: far,
			host.LeftHand: far, host.RightHand: far,
		},
		pressed: map[host.AnchorID]bool{},
		head:    posemath.Identity(),
		tracked: map[host.ObjectID]posemath.Pose{},
	}
}

func (r *rig) AnchorPose(a host.AnchorID) posemath.Pose { return r.anchors[a] }
func (r *rig) HeadPose() posemath.Pose                  { return r.head }
func (r *rig) ObjectPose(o host.ObjectID) posemath.Pose { return r.tracked[o] }
func (r *rig) ActivationPressed(a host.AnchorID) bool   { return r.pressed[a] }
func (r *rig) move(a host.AnchorID, pos mgl64.Vec3)     { r.anchors[a] = posemath.At(pos) }
func (r *rig) moveBy(a host.AnchorID, d mgl64.Vec3)     { r.anchors[a] = r.anchors[a].Translate(d) }

type fixture struct {
	rig   *rig
	world *host.World
	reg   *cd.Registry
	env   Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{rig: newRig(), world: host.NewWorld(), reg: cd.NewRegistry()}
	f.world.AddObject("cube", posemath.Identity())
	f.world.Attach("cube.grab", "cube", host.Box(mgl64.Vec3{}, mgl64.Vec3{0.2, 0.2, 0.2}))
	f.env = Env{
		Tracking: f.rig, Input: f.rig, Bounds: f.world,
		Scene: f.world, Effects: f.world, Profiles: f.reg,
	}
	return f
}

func (f *fixture) controller(t *testing.T, cfg Config, s Strategy) *Controller {
	t.Helper()
	c, err := New(cfg, f.env, s, posemath.Identity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func (f *fixture) useProfile(t *testing.T, p cd.Profile) {
	t.Helper()
	if err := f.reg.Register(cd.Subtle, cd.Variant{Normal: &p, Loaded: &p}); err != nil {
		t.Fatal(err)
	}
	if err := f.reg.Select(cd.Subtle); err != nil {
		t.Fatal(err)
	}
}

func controllerConfig() Config {
	cfg := DefaultConfig()
	cfg.Object = "cube"
	cfg.Boundary = "cube.grab"
	cfg.Anchors = []host.AnchorID{host.LeftController, host.RightController}
	return cfg
}

func TestController_StateMachine(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	c := f.controller(t, controllerConfig(), Direct{})

	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Idle))

	f.rig.move(host.RightController, mgl64.Vec3{})
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Highlighted))
	g.Expect(c.Grabbing()).To(BeFalse())

	f.rig.pressed[host.RightController] = true
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Grabbing))
	g.Expect(c.GrabCount()).To(Equal(1))
	obj, _ := f.world.Object("cube")
	g.Expect(obj.Kinematic).To(BeTrue())
	g.Expect(f.world.Haptics).To(ConsistOf(host.HapticRequest{Anchor: host.RightController, Seconds: 0.1}))

	s, ok := c.Session()
	g.Expect(ok).To(BeTrue())
	g.Expect(s.Anchor).To(Equal(host.RightController))
	g.Expect(s.Secondary).To(Equal(host.LeftController))

	f.rig.pressed[host.RightController] = false
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Idle))
	g.Expect(obj.Kinematic).To(BeFalse())
	g.Expect(f.world.Haptics).To(HaveLen(2))
	_, ok = c.Session()
	g.Expect(ok).To(BeFalse())

	// highlight drops once the anchor leaves
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Highlighted))
	f.rig.move(host.RightController, mgl64.Vec3{2, 0, 0})
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Idle))
}

func TestController_PassThroughFollowsAnchor(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	c := f.controller(t, controllerConfig(), Direct{})

	f.rig.anchors[host.LeftController] = posemath.At(mgl64.Vec3{0.05, 0, 0})
	f.rig.pressed[host.LeftController] = true
	c.Tick(dt)

	f.rig.moveBy(host.LeftController, mgl64.Vec3{0.3, 0.1, -0.2})
	c.Tick(dt)
	g.Expect(c.Pose().Pos.ApproxEqualThreshold(mgl64.Vec3{0.3, 0.1, -0.2}, 1e-9)).To(BeTrue())

	// the anchor is drawn exactly where it is tracked
	g.Expect(c.VisibleAnchor(host.LeftController).ApproxEqual(f.rig.anchors[host.LeftController], 1e-6)).To(BeTrue())

	obj, _ := f.world.Object("cube")
	g.Expect(obj.Pose.Pos).To(Equal(c.Pose().Pos))
}

func TestController_ScaledGrab(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	f.useProfile(t, cd.Profile{
		HorizontalRatio: 0.5, VerticalRatio: 0.5, RotationalRatio: 1,
		Acceleration: 1e9, SpinAcceleration: 1e9, TwistAcceleration: 1e9,
	})
	c := f.controller(t, controllerConfig(), Direct{})

	f.rig.move(host.LeftController, mgl64.Vec3{})
	f.rig.pressed[host.LeftController] = true
	c.Tick(dt)
	g.Expect(c.Grabbing()).To(BeTrue())

	f.rig.move(host.LeftController, mgl64.Vec3{1, 0, 0})
	c.Tick(dt)
	g.Expect(c.Target().Pos.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, 1e-9)).To(BeTrue())
	g.Expect(c.Pose().Pos.X()).To(BeNumerically("~", 0.5, 1e-5))
	g.Expect(c.TravelDirection().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9)).To(BeTrue())
}

func TestController_AccelerationLimitsFirstStep(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	f.useProfile(t, cd.Profile{
		HorizontalRatio: 1, VerticalRatio: 1, RotationalRatio: 1,
		Acceleration: 100, SpinAcceleration: 1e9, TwistAcceleration: 1e9,
	})
	c := f.controller(t, controllerConfig(), Direct{})

	f.rig.move(host.LeftController, mgl64.Vec3{})
	f.rig.pressed[host.LeftController] = true
	c.Tick(dt)
	f.rig.move(host.LeftController, mgl64.Vec3{1, 0, 0})
	c.Tick(dt)

	g.Expect(c.Pose().Pos.X()).To(BeNumerically("~", 100*dt*dt, 1e-9))
	g.Expect(c.Velocity().Linear).To(BeNumerically("~", 100*dt, 1e-9))
}

func TestController_HeadMotionIsCompensated(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	f.useProfile(t, cd.Profile{
		HorizontalRatio: 0.5, VerticalRatio: 0.5, RotationalRatio: 1,
		Acceleration: 1e9, SpinAcceleration: 1e9, TwistAcceleration: 1e9,
	})
	c := f.controller(t, controllerConfig(), Direct{})

	f.rig.move(host.LeftController, mgl64.Vec3{})
	f.rig.pressed[host.LeftController] = true
	c.Tick(dt)

	// walking carries the hand along; only motion relative to the head scales
	f.rig.head = posemath.At(mgl64.Vec3{1, 0, 0})
	f.rig.move(host.LeftController, mgl64.Vec3{1, 0, 0})
	c.Tick(dt)
	g.Expect(c.Pose().Pos.X()).To(BeNumerically("~", 1, 1e-5))
}

func TestController_ThrowOnRelease(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	c := f.controller(t, controllerConfig(), Direct{})

	f.rig.move(host.LeftController, mgl64.Vec3{})
	f.rig.pressed[host.LeftController] = true
	c.Tick(0.1)
	f.rig.move(host.LeftController, mgl64.Vec3{0.1, 0, 0})
	c.Tick(0.1)
	g.Expect(c.Velocity().Linear).To(BeNumerically("~", 1, 1e-9))

	f.rig.pressed[host.LeftController] = false
	c.Tick(0.1)
	obj, _ := f.world.Object("cube")
	g.Expect(obj.Velocity.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, 1e-9)).To(BeTrue())
}

func TestController_TrackingMode(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	cfg := controllerConfig()
	cfg.Anchors = []host.AnchorID{host.LeftHand, host.RightHand}
	cfg.Tracking = true
	cfg.Tracked = "cube.real"
	f.rig.tracked["cube.real"] = posemath.At(mgl64.Vec3{0, 0, 0.5})
	c := f.controller(t, cfg, &Tracked{})

	obj, _ := f.world.Object("cube")
	g.Expect(obj.Kinematic).To(BeTrue())

	// idle: follows the tracked counterpart
	c.Tick(dt)
	g.Expect(c.Pose().Pos.ApproxEqualThreshold(mgl64.Vec3{0, 0, 0.5}, 1e-9)).To(BeTrue())

	// a hand starts the grab by touch alone
	f.rig.move(host.RightHand, mgl64.Vec3{0, 0, 0.5})
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Grabbing))
	g.Expect(f.world.Haptics).To(HaveLen(1))

	f.rig.tracked["cube.real"] = posemath.At(mgl64.Vec3{0.2, 0, 0.5})
	f.rig.move(host.RightHand, mgl64.Vec3{0.2, 0, 0.5})
	c.Tick(dt)
	g.Expect(c.Pose().Pos.ApproxEqualThreshold(mgl64.Vec3{0.2, 0, 0.5}, 1e-9)).To(BeTrue())
	g.Expect(c.VisibleAnchor(host.RightHand).Pos.ApproxEqualThreshold(mgl64.Vec3{0.2, 0, 0.5}, 1e-9)).To(BeTrue())

	// the real object drifts away from the hand
	f.rig.tracked["cube.real"] = posemath.At(mgl64.Vec3{0.9, 0, 0.5})
	c.Tick(dt)
	g.Expect(c.State()).To(Equal(Idle))
	g.Expect(obj.Kinematic).To(BeTrue())
	g.Expect(obj.Velocity).To(Equal(mgl64.Vec3{}))
}

type recorder struct {
	positions []mgl64.Vec3
	anchors   []host.AnchorID
}

func (r *recorder) ObjectMoved(pos mgl64.Vec3, a host.AnchorID) {
	r.positions = append(r.positions, pos)
	r.anchors = append(r.anchors, a)
}

func TestController_ListenersSeeEveryGrabbingTick(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	c := f.controller(t, controllerConfig(), Direct{})
	rec := &recorder{}
	c.AddListener(rec)

	c.Tick(dt)
	f.rig.move(host.RightController, mgl64.Vec3{})
	f.rig.pressed[host.RightController] = true
	c.Tick(dt)
	for i := 0; i < 3; i++ {
		f.rig.moveBy(host.RightController, mgl64.Vec3{0, 0.1, 0})
		c.Tick(dt)
	}
	g.Expect(rec.positions).To(HaveLen(3))
	g.Expect(rec.anchors).To(HaveEach(host.RightController))
	g.Expect(rec.positions[2].Y()).To(BeNumerically("~", 0.3, 1e-9))

	s, _ := c.Session()
	g.Expect(s.Ticks).To(Equal(3))
}

type hooked struct {
	Direct
	loaded  bool
	started bool
	stopped bool
	moves   int
}

func (h *hooked) Start(*Session, Frame) { h.started = true }
func (h *hooked) Stop(*Session)         { h.stopped = true }
func (h *hooked) Loaded() bool          { return h.loaded }
func (h *hooked) Moved(*Session, posemath.Pose, posemath.Velocity, mgl64.Vec3) bool {
	h.moves++
	return true
}

func TestController_StrategyHooks(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)
	slow := cd.Profile{HorizontalRatio: 1, VerticalRatio: 1, RotationalRatio: 1, Acceleration: 1, SpinAcceleration: 1, TwistAcceleration: 1}
	if err := f.reg.Register(cd.Subtle, cd.Variant{Loaded: &slow}); err != nil {
		t.Fatal(err)
	}
	g.Expect(f.reg.Select(cd.Subtle)).To(Succeed())

	h := &hooked{loaded: true}
	c := f.controller(t, controllerConfig(), h)

	f.rig.move(host.LeftController, mgl64.Vec3{})
	f.rig.pressed[host.LeftController] = true
	c.Tick(dt)
	g.Expect(h.started).To(BeTrue())

	f.rig.move(host.LeftController, mgl64.Vec3{1, 0, 0})
	c.Tick(dt)
	g.Expect(h.moves).To(Equal(1))
	// loaded profile applied, then the hook reset the velocity
	g.Expect(c.Pose().Pos.X()).To(BeNumerically("~", dt*dt, 1e-12))
	g.Expect(c.Velocity().IsZero()).To(BeTrue())

	f.rig.pressed[host.LeftController] = false
	c.Tick(dt)
	g.Expect(h.stopped).To(BeTrue())
}

type paired struct{ Direct }

func (paired) RequiresSecondary() bool { return true }

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)
	cfg := controllerConfig()

	tracking := cfg
	tracking.Tracking = true

	unpaired := cfg
	unpaired.Anchors = []host.AnchorID{host.NoAnchor}

	noAnchors := cfg
	noAnchors.Anchors = nil

	noInput := f.env
	noInput.Input = nil

	tests := []struct {
		name     string
		cfg      Config
		env      Env
		strategy Strategy
		err      error
	}{
		{"nil strategy", cfg, f.env, nil, ErrNoStrategy},
		{"no anchors", noAnchors, f.env, Direct{}, ErrNoAnchors},
		{"tracking without counterpart", tracking, f.env, Direct{}, ErrNoTrackedObject},
		{"paired strategy without secondary", unpaired, f.env, paired{}, ErrUnpairedAnchor},
		{"missing input", cfg, noInput, Direct{}, ErrMissingCollaborator},
		{"ok", cfg, f.env, paired{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.env, tt.strategy, posemath.Identity())
			if tt.err == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
