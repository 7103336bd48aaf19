package lever

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/grab"
	"github.com/san-kum/heft/internal/posemath"
)

// Strategy drives a two-handed tool. The grab session's anchor origin and
// offset refer to the two-handed anchor, so the single-anchor pipeline can
// scale it unchanged.
type Strategy struct {
	cfg    Config
	loader *Loader

	leverage  float64
	grip      float64
	lastBlade mgl64.Vec3
	dt        float64
}

// NewStrategy returns a lever strategy. loader may be nil for a tool that
// never digs.
func NewStrategy(cfg Config, loader *Loader) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("lever strategy: %w", err)
	}
	return &Strategy{cfg: cfg, loader: loader, leverage: 1}, nil
}

func (st *Strategy) RequiresSecondary() bool { return true }

func (st *Strategy) Start(s *grab.Session, f grab.Frame) {
	anchor := ToolPose(f.Primary, f.Secondary)
	s.AnchorOrigin = anchor
	s.Offset = posemath.Relative(anchor, f.Object)
	s.Grip = posemath.Relative(f.Object, anchor)
	st.grip = st.clampGrip(f.Secondary.Pos.Sub(f.Primary.Pos).Len())
	st.lastBlade = BladeTip(f.Object, st.cfg)
}

func (st *Strategy) Target(s *grab.Session, f grab.Frame, p *cd.Profile) posemath.Pose {
	sep := f.Secondary.Pos.Sub(f.Primary.Pos).Len()
	st.leverage = Leverage(sep, st.cfg)
	st.dt = f.Dt
	st.updateGrip(sep)

	tool := f
	tool.Primary = ToolPose(f.Primary, f.Secondary)
	target := grab.Direct{}.Target(s, tool, EffectiveProfile(p, sep, st.cfg))
	return ClipToGround(target, st.cfg)
}

func (st *Strategy) Moved(_ *grab.Session, pose posemath.Pose, _ posemath.Velocity, _ mgl64.Vec3) bool {
	blade := BladeTip(pose, st.cfg)
	var vel mgl64.Vec3
	if st.dt > 0 {
		vel = blade.Sub(st.lastBlade).Mul(1 / st.dt)
	}
	st.lastBlade = blade
	if st.loader == nil {
		return false
	}
	return st.loader.Update(pose, vel)
}

func (st *Strategy) Loaded() bool {
	return st.loader != nil && st.loader.Loaded()
}

func (st *Strategy) Loader() *Loader       { return st.loader }
func (st *Strategy) Leverage() float64     { return st.leverage }
func (st *Strategy) GripDistance() float64 { return st.grip }

// SecondaryGrip is where the secondary hand is drawn on the displayed tool.
func (st *Strategy) SecondaryGrip(tool posemath.Pose) mgl64.Vec3 {
	return tool.Pos.Add(tool.Forward().Mul(st.grip))
}

func (st *Strategy) clampGrip(d float64) float64 {
	return math.Max(0, math.Min(d, st.cfg.ShaftLength))
}

func (st *Strategy) updateGrip(sep float64) {
	if d := st.clampGrip(sep); math.Abs(d-st.grip) > st.cfg.DeadBand {
		st.grip = d
	}
}
