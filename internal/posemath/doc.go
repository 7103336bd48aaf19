// Package posemath implements the pose algebra behind C/D manipulation.
//
// All functions are pure. Orientations are unit quaternions; whenever an
// orientation is derived from direction vectors it is rebuilt through
// [LookRotation] so it stays orthonormal. Axis conventions: local forward is
// +Z, up is +Y, right is +X.
//
// The two central operations are:
//
//   - [ScaledDiff]: where the object should be, given how far the hand moved
//     since an origin snapshot and the active C/D profile
//   - [NextPose]: how far the displayed object may move towards that target
//     this frame, given its current velocity and the profile's acceleration
//     limits
//
// Velocity is never integrated directly. [ComputeVelocity] re-derives it from
// the pose delta actually achieved, so a snap imposed from outside shows up as
// extra velocity on the next frame and is bounded again by acceleration.
package posemath
