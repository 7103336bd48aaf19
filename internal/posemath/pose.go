package posemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

var (
	WorldForward = mgl64.Vec3{0, 0, 1}
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldRight   = mgl64.Vec3{1, 0, 0}
)

type Pose struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

func Identity() Pose {
	return Pose{Rot: mgl64.QuatIdent()}
}

func At(pos mgl64.Vec3) Pose {
	return Pose{Pos: pos, Rot: mgl64.QuatIdent()}
}

// NewPose builds a pose from a position and a forward/up pair.
func NewPose(pos, forward, up mgl64.Vec3) Pose {
	return Pose{Pos: pos, Rot: LookRotation(forward, up)}
}

func (p Pose) Forward() mgl64.Vec3 { return p.Rot.Rotate(WorldForward) }
func (p Pose) Up() mgl64.Vec3      { return p.Rot.Rotate(WorldUp) }
func (p Pose) Right() mgl64.Vec3   { return p.Rot.Rotate(WorldRight) }

// Translate returns the pose shifted by d, orientation unchanged.
func (p Pose) Translate(d mgl64.Vec3) Pose {
	p.Pos = p.Pos.Add(d)
	return p
}

func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	return p.Pos.ApproxEqualThreshold(o.Pos, eps) && p.Rot.OrientationEqualThreshold(o.Rot, eps)
}

func (p Pose) IsValid() bool {
	for _, v := range []float64{p.Pos[0], p.Pos[1], p.Pos[2], p.Rot.W, p.Rot.V[0], p.Rot.V[1], p.Rot.V[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LookRotation returns the rotation whose forward axis points along forward
// and whose up axis is as close to up as possible. Degenerate input (zero
// forward, up parallel to forward) falls back to an arbitrary perpendicular.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Len() < epsilon {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Len() < epsilon {
		r = WorldUp.Cross(f)
		if r.Len() < epsilon {
			r = WorldForward.Cross(f)
		}
	}
	r = r.Normalize()
	u := f.Cross(r)
	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// AngleDeg is the unsigned angle between two vectors in degrees.
func AngleDeg(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < epsilon || lb < epsilon {
		return 0
	}
	c := mgl64.Clamp(a.Dot(b)/(la*lb), -1, 1)
	return mgl64.RadToDeg(math.Acos(c))
}

// SlerpDirection spherically interpolates between two directions. The result
// is unit length.
func SlerpDirection(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	if to.Len() < epsilon {
		return safeNormalize(from)
	}
	if from.Len() < epsilon || t >= 1 {
		return to.Normalize()
	}
	if t <= 0 {
		return from.Normalize()
	}
	q := mgl64.QuatSlerp(mgl64.QuatIdent(), mgl64.QuatBetweenVectors(from, to), t)
	return q.Rotate(from.Normalize()).Normalize()
}

// RotateTowards turns from towards to by at most maxDeg degrees. The bool
// reports whether to was reached.
func RotateTowards(from, to mgl64.Vec3, maxDeg float64) (mgl64.Vec3, bool) {
	angle := AngleDeg(from, to)
	if angle <= maxDeg {
		return SlerpDirection(from, to, 1), true
	}
	if maxDeg <= 0 {
		return safeNormalize(from), false
	}
	return SlerpDirection(from, to, maxDeg/angle), false
}

// MoveTowards moves from along the straight line to to by at most maxDist.
func MoveTowards(from, to mgl64.Vec3, maxDist float64) (mgl64.Vec3, bool) {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= maxDist || dist < epsilon {
		return to, true
	}
	if maxDist <= 0 {
		return from, false
	}
	return from.Add(d.Mul(maxDist / dist)), false
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < epsilon {
		return v
	}
	return v.Normalize()
}

// SafeNormalize returns v scaled to unit length, or the zero vector.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < epsilon {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}
