// Package host defines the collaborators the manipulation core talks to.
//
// The core reads tracked poses, activation inputs and bounds tests through
// [Tracking], [Input] and [Bounds]. Everything with a side effect (haptics,
// audio, physics toggles, spawning loose loads) goes through [Effects] and is
// fire-and-forget. [Dispatcher] queues those requests during a tick so they
// reach the host only after every state transition of that tick completed.
//
// [World] is an in-memory host backed by axis-aligned boxes. It serves the
// CLI's scripted runs and the package tests.
package host
