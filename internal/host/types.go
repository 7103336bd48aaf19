package host

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/posemath"
)

type AnchorID int

const (
	NoAnchor AnchorID = iota
	LeftController
	RightController
	LeftHand
	RightHand
)

func (a AnchorID) String() string {
	switch a {
	case LeftController:
		return "left_controller"
	case RightController:
		return "right_controller"
	case LeftHand:
		return "left_hand"
	case RightHand:
		return "right_hand"
	default:
		return "none"
	}
}

// Secondary is the opposite hand of the same kind.
func (a AnchorID) Secondary() AnchorID {
	switch a {
	case LeftController:
		return RightController
	case RightController:
		return LeftController
	case LeftHand:
		return RightHand
	case RightHand:
		return LeftHand
	default:
		return NoAnchor
	}
}

// HasActivation reports whether the anchor has an input that must be held
// to grab. Tracked hands grab on contact.
func (a AnchorID) HasActivation() bool {
	return a == LeftController || a == RightController
}

type Hand int

const (
	NoHand Hand = iota
	Left
	Right
)

func (h Hand) String() string {
	switch h {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "None"
	}
}

func (a AnchorID) Hand() Hand {
	switch a {
	case LeftController, LeftHand:
		return Left
	case RightController, RightHand:
		return Right
	default:
		return NoHand
	}
}

func ParseAnchor(s string) AnchorID {
	for _, a := range []AnchorID{LeftController, RightController, LeftHand, RightHand} {
		if a.String() == s {
			return a
		}
	}
	return NoAnchor
}

type (
	ObjectID string
	VolumeID string
	CueID    string
)

const (
	CueTargetReached CueID = "target_reached"
	CueBarrierHit    CueID = "barrier_hit"
	CueLoaded        CueID = "loaded"
	CueUnloaded      CueID = "unloaded"
)

// LooseLoad is material thrown off a tool blade. It lives independently of
// the tool once spawned.
type LooseLoad struct {
	Pose     posemath.Pose
	Velocity mgl64.Vec3
	Volume   float64
	// Seconds during which the load must not collide, so it does not
	// immediately bounce off the blade that released it.
	IgnoreCollisionsFor float64
}

type Tracking interface {
	AnchorPose(AnchorID) posemath.Pose
	HeadPose() posemath.Pose
	// ObjectPose returns the live pose of a tracked physical counterpart.
	ObjectPose(ObjectID) posemath.Pose
}

type Input interface {
	ActivationPressed(AnchorID) bool
}

type Bounds interface {
	Contains(VolumeID, mgl64.Vec3) bool
	Intersects(a, b VolumeID) bool
}

// Scene receives the displayed pose of a manipulated object.
type Scene interface {
	Place(ObjectID, posemath.Pose)
}

type Haptics interface {
	RequestHaptic(anchor AnchorID, seconds float64)
}

type Audio interface {
	PlayCue(CueID)
}

type Physics interface {
	SetKinematic(ObjectID, bool)
	ApplyImpulse(ObjectID, mgl64.Vec3)
}

type Spawner interface {
	SpawnLooseLoad(LooseLoad)
}

type Effects interface {
	Haptics
	Audio
	Physics
	Spawner
}
