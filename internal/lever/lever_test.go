package lever

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/grab"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"

	. "github.com/onsi/gomega"
)

const tol = 1e-6

func TestToolPose(t *testing.T) {
	g := NewWithT(t)

	p := ToolPose(posemath.Identity(), posemath.At(mgl64.Vec3{0, 0, 1}))
	g.Expect(p.Forward().ApproxEqualThreshold(posemath.WorldForward, tol)).To(BeTrue())
	g.Expect(p.Up().ApproxEqualThreshold(posemath.WorldUp, tol)).To(BeTrue())
	g.Expect(p.Pos).To(Equal(mgl64.Vec3{}))

	// rolling one controller by 90 degrees tilts the tool by half that
	rolled := posemath.Pose{
		Pos: mgl64.Vec3{0, 0, 1},
		Rot: mgl64.QuatRotate(math.Pi/2, posemath.WorldForward),
	}
	p = ToolPose(posemath.Identity(), rolled)
	g.Expect(posemath.AngleDeg(p.Up(), posemath.WorldUp)).To(BeNumerically("~", 45, 1e-4))
	g.Expect(p.Forward().ApproxEqualThreshold(posemath.WorldForward, tol)).To(BeTrue())

	// coincident hands keep the primary's heading
	p = ToolPose(posemath.Identity(), posemath.Identity())
	g.Expect(p.IsValid()).To(BeTrue())
	g.Expect(p.Forward().ApproxEqualThreshold(posemath.WorldForward, tol)).To(BeTrue())
}

func TestLeverage(t *testing.T) {
	cfg := DefaultConfig()
	full := cfg.ShaftLength * cfg.LeverageK
	tests := []struct {
		name string
		sep  float64
		want float64
	}{
		{"together", 0, 0},
		{"half", full / 2, 0.5},
		{"full", full, 1},
		{"beyond", full + 0.3, 1},
		{"far beyond", 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Leverage(tt.sep, cfg); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEffectiveProfile_ClampsAtBaseRatio(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()
	base, _ := cd.GetPreset("pronounced")
	full := cfg.ShaftLength * cfg.LeverageK

	for _, sep := range []float64{full, full + 0.01, full * 2, 100} {
		p := EffectiveProfile(base, sep, cfg)
		g.Expect(p.RotationalRatio).To(Equal(base.RotationalRatio), "separation %v", sep)
		g.Expect(p.HorizontalRatio).To(Equal(base.HorizontalRatio))
	}

	p := EffectiveProfile(base, full/4, cfg)
	g.Expect(p.RotationalRatio).To(BeNumerically("~", base.RotationalRatio/4, 1e-12))
	g.Expect(p.RotationalRatio).To(BeNumerically("<", base.RotationalRatio))

	g.Expect(EffectiveProfile(nil, full/4, cfg)).To(BeNil())
}

func TestEffectiveProfile_IgnoresHorizontalRatio(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()
	full := cfg.ShaftLength * cfg.LeverageK
	p := cd.Identity()
	p.HorizontalRatio = 0.5
	p.RotationalRatio = 0.8

	g.Expect(EffectiveProfile(&p, full/2, cfg).RotationalRatio).To(BeNumerically("~", 0.4, 1e-12))
	g.Expect(EffectiveProfile(&p, full, cfg).RotationalRatio).To(Equal(0.8))
}

func TestClipToGround(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	down := posemath.NewPose(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, -1, 0}, posemath.WorldForward)
	clipped := ClipToGround(down, cfg)
	g.Expect(clipped.Pos.Y()).To(BeNumerically("~", cfg.BladeLength, tol))
	g.Expect(BladeTip(clipped, cfg).Y()).To(BeNumerically("~", cfg.GroundHeight, tol))

	level := posemath.At(mgl64.Vec3{0, 1, 0})
	g.Expect(ClipToGround(level, cfg)).To(Equal(level))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.ShaftLength = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewStrategy(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig from NewStrategy, got %v", err)
	}
}

func TestPile(t *testing.T) {
	g := NewWithT(t)
	p := NewPile("pile", "", mgl64.Vec3{}, 1)

	g.Expect(p.Take(0.25)).To(Equal(0.25))
	g.Expect(p.Remaining()).To(Equal(0.75))
	g.Expect(p.Take(5)).To(Equal(0.75))
	g.Expect(p.Complete()).To(BeTrue())
	g.Expect(p.Take(1)).To(Equal(0.0))
	g.Expect(p.Remaining()).To(Equal(0.0))
	g.Expect(p.Initial()).To(Equal(1.0))
}

// pileWorld puts a pile centred at z=2 and a wider margin around it.
func pileWorld(margin bool) (*host.World, *Pile) {
	w := host.NewWorld()
	w.AddVolume("pile", host.Box(mgl64.Vec3{0, 0, 2}, mgl64.Vec3{4, 1, 1}))
	m := host.VolumeID("")
	if margin {
		m = "pile.margin"
		w.AddVolume(m, host.Box(mgl64.Vec3{0, 0, 2}, mgl64.Vec3{6, 3, 3}))
	}
	return w, NewPile("pile", m, mgl64.Vec3{0, 0, 2}, 1)
}

var (
	upright  = mgl64.QuatIdent()
	inverted = posemath.LookRotation(posemath.WorldForward, mgl64.Vec3{0, -1, 0})
)

// hilt returns a tool pose whose blade tip ends at tip.
func hilt(tip mgl64.Vec3, rot mgl64.Quat) posemath.Pose {
	p := posemath.Pose{Rot: rot}
	p.Pos = tip.Sub(p.Forward().Mul(DefaultConfig().BladeLength))
	return p
}

func TestLoader_LoadThenUnload(t *testing.T) {
	g := NewWithT(t)
	w, pile := pileWorld(true)
	l := NewLoader(DefaultConfig(), pile, w, w, nil)

	g.Expect(l.Update(hilt(mgl64.Vec3{0, 0, 2}, upright), mgl64.Vec3{})).To(BeTrue())
	g.Expect(l.State()).To(Equal(Loaded))
	g.Expect(pile.Remaining()).To(BeNumerically("~", 0.75, 1e-12))
	g.Expect(l.Carried()).To(Equal(0.25))
	g.Expect(w.Cues).To(Equal([]host.CueID{host.CueLoaded}))

	// inverted but still over the pile: keeps the load
	g.Expect(l.Update(hilt(mgl64.Vec3{0, 0, 2}, inverted), mgl64.Vec3{})).To(BeFalse())
	g.Expect(l.Update(hilt(mgl64.Vec3{0, 0, 3}, inverted), mgl64.Vec3{})).To(BeFalse())

	throw := mgl64.Vec3{0, 0, 2}
	g.Expect(l.Update(hilt(mgl64.Vec3{0, 0, -3}, inverted), throw)).To(BeTrue())
	g.Expect(l.State()).To(Equal(Empty))
	g.Expect(w.Spawned).To(HaveLen(1))
	g.Expect(w.Spawned[0].Volume).To(Equal(0.25))
	g.Expect(w.Spawned[0].Velocity).To(Equal(throw))
	g.Expect(w.Spawned[0].IgnoreCollisionsFor).To(Equal(0.2))
	g.Expect(w.Spawned[0].Pose.Pos.ApproxEqualThreshold(mgl64.Vec3{0, 0, -3}, tol)).To(BeTrue())
	g.Expect(l.Delivered()).To(Equal(0.25))
	g.Expect(pile.Remaining()).To(BeNumerically("~", 0.75, 1e-12))
}

func TestLoader_UprightToolKeepsLoad(t *testing.T) {
	g := NewWithT(t)
	w, pile := pileWorld(true)
	l := NewLoader(DefaultConfig(), pile, w, w, nil)

	l.Update(hilt(mgl64.Vec3{0, 0, 2}, upright), mgl64.Vec3{})
	tilted := posemath.LookRotation(posemath.WorldForward, mgl64.Vec3{1, 0.2, 0})
	g.Expect(l.Update(hilt(mgl64.Vec3{0, 0, -3}, tilted), mgl64.Vec3{})).To(BeFalse())
	g.Expect(l.Loaded()).To(BeTrue())
	g.Expect(w.Spawned).To(BeEmpty())
}

func TestLoader_ReentryLatch(t *testing.T) {
	g := NewWithT(t)
	// no margin: the load can be dumped while the blade is still in the pile
	w, pile := pileWorld(false)
	l := NewLoader(DefaultConfig(), pile, w, w, nil)
	in := mgl64.Vec3{0, 0, 2}
	out := mgl64.Vec3{0, 0, -1}

	for i := 0; i < 5; i++ {
		l.Update(hilt(in, upright), mgl64.Vec3{})
	}
	g.Expect(l.Loads()).To(Equal(1))

	g.Expect(l.Update(hilt(in, inverted), mgl64.Vec3{})).To(BeTrue())
	g.Expect(l.State()).To(Equal(Empty))

	for i := 0; i < 5; i++ {
		g.Expect(l.Update(hilt(in, upright), mgl64.Vec3{})).To(BeFalse())
	}
	g.Expect(l.Loads()).To(Equal(1))
	g.Expect(pile.Remaining()).To(BeNumerically("~", 0.75, 1e-12))

	l.Update(hilt(out, upright), mgl64.Vec3{})
	g.Expect(l.Update(hilt(in, upright), mgl64.Vec3{})).To(BeTrue())
	g.Expect(l.Loads()).To(Equal(2))
	g.Expect(pile.Remaining()).To(BeNumerically("~", 0.5, 1e-12))
}

func TestLoader_AngleGating(t *testing.T) {
	g := NewWithT(t)
	// blade reaches the side of the pile while the shaft points past it
	tip := mgl64.Vec3{1.5, 0, 2}

	w, pile := pileWorld(true)
	l := NewLoader(DefaultConfig(), pile, w, w, nil)
	g.Expect(l.Update(hilt(tip, upright), mgl64.Vec3{})).To(BeFalse())
	g.Expect(l.Loaded()).To(BeFalse())

	cfg := DefaultConfig()
	cfg.AngleGating = false
	w, pile = pileWorld(true)
	l = NewLoader(cfg, pile, w, w, nil)
	g.Expect(l.Update(hilt(tip, upright), mgl64.Vec3{})).To(BeTrue())
}

func TestLoader_DepletedPileIsTerminal(t *testing.T) {
	g := NewWithT(t)
	w, _ := pileWorld(false)
	pile := NewPile("pile", "", mgl64.Vec3{0, 0, 2}, 0.3)
	l := NewLoader(DefaultConfig(), pile, w, w, nil)
	in, out := mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -1}

	cycle := func() {
		l.Update(hilt(out, upright), mgl64.Vec3{})
		l.Update(hilt(in, upright), mgl64.Vec3{})
		l.Update(hilt(out, inverted), mgl64.Vec3{})
	}
	cycle()
	cycle()
	g.Expect(pile.Complete()).To(BeTrue())
	g.Expect(l.Delivered()).To(BeNumerically("~", 0.3, 1e-12))

	cycle()
	g.Expect(l.Loads()).To(Equal(2))
	g.Expect(w.Spawned).To(HaveLen(2))
}

func TestStrategy_GripDeadBand(t *testing.T) {
	g := NewWithT(t)
	st, err := NewStrategy(DefaultConfig(), nil)
	g.Expect(err).NotTo(HaveOccurred())

	s := &grab.Session{}
	f := grab.Frame{
		Primary:   posemath.Identity(),
		Secondary: posemath.At(mgl64.Vec3{0, 0, 0.5}),
		Object:    posemath.Identity(),
		Dt:        0.02,
	}
	st.Start(s, f)
	g.Expect(st.GripDistance()).To(Equal(0.5))

	f.Secondary = posemath.At(mgl64.Vec3{0, 0, 0.505})
	st.Target(s, f, nil)
	g.Expect(st.GripDistance()).To(Equal(0.5))

	f.Secondary = posemath.At(mgl64.Vec3{0, 0, 0.52})
	st.Target(s, f, nil)
	g.Expect(st.GripDistance()).To(BeNumerically("~", 0.52, 1e-12))

	f.Secondary = posemath.At(mgl64.Vec3{0, 0, 3})
	st.Target(s, f, nil)
	g.Expect(st.GripDistance()).To(Equal(DefaultConfig().ShaftLength))
	g.Expect(st.SecondaryGrip(posemath.Identity()).ApproxEqualThreshold(mgl64.Vec3{0, 0, 0.9}, tol)).To(BeTrue())
}

func TestStrategy_LeverageAttenuatesRotation(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()
	st, err := NewStrategy(cfg, nil)
	g.Expect(err).NotTo(HaveOccurred())

	p := &cd.Profile{HorizontalRatio: 1, VerticalRatio: 1, RotationalRatio: 1}
	full := cfg.ShaftLength * cfg.LeverageK

	facing := func(pos, fwd mgl64.Vec3) posemath.Pose { return posemath.NewPose(pos, fwd, posemath.WorldUp) }
	right := mgl64.Vec3{1, 0, 0}

	start := grab.Frame{
		Primary:   facing(mgl64.Vec3{0, 1, 0}, posemath.WorldForward),
		Secondary: facing(mgl64.Vec3{0, 1, full / 2}, posemath.WorldForward),
		Object:    posemath.At(mgl64.Vec3{0, 1, 0}),
	}
	s := &grab.Session{HeadOrigin: start.Head}
	st.Start(s, start)

	// swing the shaft a quarter turn to the right, same separation
	f := start
	f.Primary = facing(mgl64.Vec3{0, 1, 0}, right)
	f.Secondary = facing(mgl64.Vec3{full / 2, 1, 0}, right)
	target := st.Target(s, f, p)
	g.Expect(st.Leverage()).To(BeNumerically("~", 0.5, 1e-12))
	g.Expect(posemath.AngleDeg(target.Forward(), posemath.WorldForward)).To(BeNumerically("~", 45, 1e-4))

	// at full leverage the tool turns all the way
	f.Secondary = facing(mgl64.Vec3{full, 1, 0}, right)
	target = st.Target(s, f, p)
	g.Expect(st.Leverage()).To(Equal(1.0))
	g.Expect(posemath.AngleDeg(target.Forward(), posemath.WorldForward)).To(BeNumerically("~", 90, 1e-4))
}

type rig struct {
	anchors map[host.AnchorID]posemath.Pose
	pressed map[host.AnchorID]bool
}

func (r *rig) AnchorPose(a host.AnchorID) posemath.Pose { return r.anchors[a] }
func (r *rig) HeadPose() posemath.Pose                  { return posemath.Identity() }
func (r *rig) ObjectPose(host.ObjectID) posemath.Pose   { return posemath.Identity() }
func (r *rig) ActivationPressed(a host.AnchorID) bool   { return r.pressed[a] }

func TestStrategy_DigThroughController(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	w, pile := pileWorld(true)
	w.AddObject("shovel", posemath.At(mgl64.Vec3{0, 0, -0.5}))
	w.Attach("shovel.hilt", "shovel", host.Box(mgl64.Vec3{}, mgl64.Vec3{0.2, 0.2, 0.2}))

	loader := NewLoader(cfg, pile, w, w, nil)
	st, err := NewStrategy(cfg, loader)
	g.Expect(err).NotTo(HaveOccurred())

	r := &rig{
		anchors: map[host.AnchorID]posemath.Pose{
			host.LeftController:  posemath.At(mgl64.Vec3{0, 0, -0.5}),
			host.RightController: posemath.At(mgl64.Vec3{0, 0, 0.3}),
		},
		pressed: map[host.AnchorID]bool{host.LeftController: true},
	}
	gcfg := grab.DefaultConfig()
	gcfg.Object = "shovel"
	gcfg.Boundary = "shovel.hilt"
	gcfg.Anchors = []host.AnchorID{host.LeftController}
	c, err := grab.New(gcfg, grab.Env{
		Tracking: r, Input: r, Bounds: w, Scene: w, Effects: w, Profiles: cd.NewRegistry(),
	}, st, posemath.At(mgl64.Vec3{0, 0, -0.5}))
	g.Expect(err).NotTo(HaveOccurred())

	c.Tick(0.02)
	g.Expect(c.State()).To(Equal(grab.Grabbing))

	// push both hands forward until the blade is in the pile
	r.anchors[host.LeftController] = posemath.At(mgl64.Vec3{0, 0, 0.75})
	r.anchors[host.RightController] = posemath.At(mgl64.Vec3{0, 0, 1.55})
	c.Tick(0.02)
	g.Expect(c.Pose().Pos.ApproxEqualThreshold(mgl64.Vec3{0, 0, 0.75}, tol)).To(BeTrue())
	g.Expect(loader.Loaded()).To(BeTrue())
	g.Expect(st.Loaded()).To(BeTrue())
	g.Expect(c.Velocity().IsZero()).To(BeTrue())
}
