package posemath

import "github.com/go-gl/mathgl/mgl64"

// Diff is the transform taking from to to: translation plus the rotation
// to.Rot * from.Rot⁻¹.
func Diff(from, to Pose) Pose {
	return Pose{
		Pos: to.Pos.Sub(from.Pos),
		Rot: to.Rot.Mul(from.Rot.Inverse()).Normalize(),
	}
}

// AddDiff applies a Diff result to current.
func AddDiff(current, diff Pose) Pose {
	return Pose{
		Pos: current.Pos.Add(diff.Pos),
		Rot: diff.Rot.Mul(current.Rot).Normalize(),
	}
}

// Compose places local, expressed in parent's frame, into world space.
func Compose(parent, local Pose) Pose {
	return Pose{
		Pos: parent.Pos.Add(parent.Rot.Rotate(local.Pos)),
		Rot: parent.Rot.Mul(local.Rot).Normalize(),
	}
}

// Relative expresses world in parent's frame. Compose(parent, Relative(parent, w)) == w.
func Relative(parent, world Pose) Pose {
	inv := parent.Rot.Inverse()
	return Pose{
		Pos: inv.Rotate(world.Pos.Sub(parent.Pos)),
		Rot: inv.Mul(world.Rot).Normalize(),
	}
}

// Lerp interpolates position linearly and orientation along the shortest arc.
func Lerp(a, b Pose, t float64) Pose {
	rb := b.Rot
	if a.Rot.Dot(rb) < 0 {
		rb = rb.Scale(-1)
	}
	return Pose{
		Pos: a.Pos.Add(b.Pos.Sub(a.Pos).Mul(t)),
		Rot: mgl64.QuatSlerp(a.Rot, rb, t),
	}
}
