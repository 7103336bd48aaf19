// Package grab implements the per-object grab interaction state machine.
//
// A [Controller] owns one manipulated object. Each tick it either looks for a
// grab to start (highlighting the object while an anchor touches its grab
// boundary), continues an active grab, or ends it:
//
//	Idle ──touch──▶ Highlighted ──press (or touch, for hands)──▶ Grabbing
//	  ▲                                                            │
//	  └───────────────── release / tracked source drifts ──────────┘
//
// While grabbing, a pluggable [Strategy] turns the tracked poses into a
// target pose, and the pursuit step from package posemath decides how far
// the displayed object may move towards it this tick. Strategies may opt into
// extra hooks ([Starter], [Stopper], [MoveHook], [LoadReporter],
// [PairedStrategy]) by implementing them.
//
// Grab state lives in a [Session] value that exists only between grab start
// and grab stop.
package grab
