// Package viz draws experiments in the terminal.
//
//   - [Model]: live Bubble Tea view of a running experiment
//   - [Scene]: Braille side or top view of the world, hands and object
//   - [PlotColumns], [PlotLag]: asciigraph charts of stored telemetry
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the run
//	C     - Next condition (C0 → C1 → C2 → P0 → P1 → P2)
//	V     - Toggle side/top view
//	+/-   - Playback speed
//	T     - Cycle color themes
//	Q     - Quit
package viz
