// Package viz provides terminal views of a running or recorded lattice.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live simulation or snapshot replay with population charts
//   - [RenderGrid]: half-block lattice rendering, two rows per line
//   - [Canvas]: Braille canvas used to isolate a single species
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reseed (live) or rewind (replay)
//	T     - Cycle color themes
//	F     - Focus on one species
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//	+/-   - Steps per frame
//
// # Recording
//
// Recorded frames are written as an animated GIF to rpsim.gif in the
// current directory.
package viz
