package posemath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
)

// Velocity tracks the three pursuit channels separately. Spin is the angular
// speed of the forward axis, twist that of the up axis; the lever tool feels
// different along its long axis than around it.
type Velocity struct {
	Linear float64 // m/s
	Spin   float64 // deg/s
	Twist  float64 // deg/s
}

func (v Velocity) IsZero() bool {
	return v.Linear == 0 && v.Spin == 0 && v.Twist == 0
}

// ScaleByRatio scales a displacement per axis; X and Z share the horizontal
// ratio.
func ScaleByRatio(d mgl64.Vec3, p *cd.Profile) mgl64.Vec3 {
	if p == nil {
		return d
	}
	return mgl64.Vec3{d[0] * p.HorizontalRatio, d[1] * p.VerticalRatio, d[2] * p.HorizontalRatio}
}

// ScaledDiff returns origin moved towards current by the profile's ratios.
// A nil profile returns current unchanged.
func ScaledDiff(origin, current Pose, p *cd.Profile) Pose {
	if p == nil {
		return current
	}
	pos := origin.Pos.Add(ScaleByRatio(current.Pos.Sub(origin.Pos), p))
	fwd := SlerpDirection(origin.Forward(), current.Forward(), p.RotationalRatio)
	up := SlerpDirection(origin.Up(), current.Up(), p.RotationalRatio)
	return Pose{Pos: pos, Rot: LookRotation(fwd, up)}
}

// MaxVelocity is the speed allowed this frame: current speed plus one frame
// of acceleration on every channel.
func MaxVelocity(v Velocity, p *cd.Profile, dt float64) Velocity {
	return Velocity{
		Linear: v.Linear + p.Acceleration*dt,
		Spin:   v.Spin + p.SpinAcceleration*dt,
		Twist:  v.Twist + p.TwistAcceleration*dt,
	}
}

// NextPose advances current towards target within the profile's acceleration
// bounds. Position moves along a straight line; forward and up rotate
// independently, limited by spin and twist respectively. A nil profile snaps
// to target.
func NextPose(current, target Pose, v Velocity, p *cd.Profile, dt float64) Pose {
	if p == nil {
		return target
	}
	if dt <= 0 {
		return current
	}
	lim := MaxVelocity(v, p, dt)

	pos, _ := MoveTowards(current.Pos, target.Pos, lim.Linear*dt)
	fwd, fwdDone := RotateTowards(current.Forward(), target.Forward(), lim.Spin*dt)
	up, upDone := RotateTowards(current.Up(), target.Up(), lim.Twist*dt)

	if fwdDone && upDone {
		return Pose{Pos: pos, Rot: target.Rot}
	}
	return Pose{Pos: pos, Rot: LookRotation(fwd, up)}
}

// ComputeVelocity derives per-channel speed from two consecutive poses.
func ComputeVelocity(from, to Pose, dt float64) Velocity {
	if dt <= 0 {
		return Velocity{}
	}
	return Velocity{
		Linear: to.Pos.Sub(from.Pos).Len() / dt,
		Spin:   AngleDeg(from.Forward(), to.Forward()) / dt,
		Twist:  AngleDeg(from.Up(), to.Up()) / dt,
	}
}
