package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/posemath"
)

// Strategy computes the pose the displayed object should move towards.
type Strategy interface {
	Target(s *Session, f Frame, p *cd.Profile) posemath.Pose
}

// Starter is notified when a grab begins, after the session origins are
// captured.
type Starter interface {
	Start(s *Session, f Frame)
}

// Stopper is notified when a grab ends, before the session is cleared.
type Stopper interface {
	Stop(s *Session)
}

// MoveHook runs after the displayed pose was applied. Returning true resets
// the controller's velocity.
type MoveHook interface {
	Moved(s *Session, pose posemath.Pose, v posemath.Velocity, travel mgl64.Vec3) bool
}

// LoadReporter selects the loaded profile variant while Loaded is true.
type LoadReporter interface {
	Loaded() bool
}

// PairedStrategy marks strategies that read the secondary anchor.
type PairedStrategy interface {
	RequiresSecondary() bool
}

// Direct maps the grabbing anchor onto the object through a fixed offset.
type Direct struct{}

func (Direct) Target(s *Session, f Frame, p *cd.Profile) posemath.Pose {
	origin := s.AnchorOrigin.Translate(s.HeadDelta(f.Head))
	anchor := posemath.ScaledDiff(origin, f.Primary, p)
	return posemath.Compose(anchor, s.Offset)
}

// Tracked follows a tracked physical counterpart instead of the anchor. The
// scaling origin is the previously displayed pose, so the object keeps
// closing on the counterpart at the profile's ratio every tick.
type Tracked struct {
	lastHead mgl64.Vec3
}

func (t *Tracked) Start(_ *Session, f Frame) {
	t.lastHead = f.Head.Pos
}

func (t *Tracked) Target(s *Session, f Frame, p *cd.Profile) posemath.Pose {
	origin := f.Object.Translate(f.Head.Pos.Sub(t.lastHead))
	t.lastHead = f.Head.Pos
	s.Offset = posemath.Relative(f.Primary, f.Tracked)
	s.Grip = posemath.Relative(f.Tracked, f.Primary)
	return posemath.ScaledDiff(origin, f.Tracked, p)
}
