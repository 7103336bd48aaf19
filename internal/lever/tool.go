package lever

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/posemath"
)

// ToolPose is the two-handed anchor: positioned at the primary hand, facing
// the secondary hand. Roll comes from both controllers' right vectors turned
// a quarter about the shaft, which is less sensitive to wrist tilt than their
// up vectors.
func ToolPose(primary, secondary posemath.Pose) posemath.Pose {
	fwd := posemath.SafeNormalize(secondary.Pos.Sub(primary.Pos))
	if fwd.Len() == 0 {
		fwd = primary.Forward()
	}
	quarter := mgl64.QuatRotate(math.Pi/2, fwd)
	rollPrimary := quarter.Rotate(primary.Right())
	rollSecondary := quarter.Rotate(secondary.Right())
	up := posemath.SlerpDirection(rollPrimary, rollSecondary, 0.5)
	return posemath.Pose{Pos: primary.Pos, Rot: posemath.LookRotation(fwd, up)}
}

// Leverage is the fraction of the requested rotation the hands can produce
// at the given separation, in [0, 1].
func Leverage(separation float64, cfg Config) float64 {
	full := cfg.ShaftLength * cfg.LeverageK
	if full <= 0 || separation >= full {
		return 1
	}
	if separation <= 0 {
		return 0
	}
	return separation / full
}

// EffectiveProfile attenuates the rotational ratio by leverage. Ratios are
// multiplied, so the result never exceeds the base ratio.
func EffectiveProfile(p *cd.Profile, separation float64, cfg Config) *cd.Profile {
	if p == nil {
		return nil
	}
	out := p.WithRotationalRatio(Leverage(separation, cfg) * p.RotationalRatio)
	return &out
}

func BladeTip(tool posemath.Pose, cfg Config) mgl64.Vec3 {
	return tool.Pos.Add(tool.Forward().Mul(cfg.BladeLength))
}

// ClipToGround lifts the hilt so the blade tip stays on or above the ground.
func ClipToGround(tool posemath.Pose, cfg Config) posemath.Pose {
	if d := cfg.GroundHeight - BladeTip(tool, cfg).Y(); d > 0 {
		tool.Pos[1] += d
	}
	return tool
}
