package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"
)

// Session is the state of one grab, from start to stop.
type Session struct {
	Anchor    host.AnchorID
	Secondary host.AnchorID

	ObjectOrigin    posemath.Pose
	AnchorOrigin    posemath.Pose
	SecondaryOrigin posemath.Pose
	HeadOrigin      posemath.Pose

	// Offset is the object expressed in the grabbing anchor's frame.
	Offset posemath.Pose
	// Grip is the grabbing anchor expressed in the object's frame; used to
	// draw the hand where it holds the displayed object.
	Grip posemath.Pose

	Ticks int
}

// HeadDelta is how far the head moved since the grab started.
func (s *Session) HeadDelta(head posemath.Pose) mgl64.Vec3 {
	return head.Pos.Sub(s.HeadOrigin.Pos)
}

// Frame carries the poses sampled for one tick.
type Frame struct {
	Primary   posemath.Pose
	Secondary posemath.Pose
	Head      posemath.Pose
	Object    posemath.Pose
	Tracked   posemath.Pose
	Dt        float64
}
