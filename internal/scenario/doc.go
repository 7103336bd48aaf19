// Package scenario drives the engine without a headset. A [Participant]
// plays a [Script] of actions (reach, press, carry, roll, walk, ...) and acts
// as the tracking and input source. Carry actions close the loop on the
// displayed object, the way a person corrects for a C/D mismatch by watching
// the object rather than their hand.
package scenario
