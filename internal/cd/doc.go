// Package cd describes Control/Display ratio profiles.
//
// A [Profile] scales real hand motion into displayed object motion and bounds
// how fast the displayed object may accelerate towards its target:
//
//   - HorizontalRatio applies to X and Z so horizontal motion stays isotropic
//   - VerticalRatio applies to Y
//   - RotationalRatio applies to forward/up slerp
//
// A nil *Profile means direct 1:1 tracking without velocity limiting.
//
// Profiles are grouped by [Intensity]. Each intensity has a normal and a
// loaded variant, the latter used once a tool carries mass:
//
//	reg := cd.NewRegistry()
//	reg.Select(cd.Pronounced)
//	p := reg.Profile(loaded)
package cd
