// Package analysis summarizes population histories.
//
//   - [Summarize]: per-species mean, spread and extremes of a run
//   - [PowerSpectrum]: magnitude spectrum of a population series
//   - [DominantPeriod]: period of the strongest oscillation
//
// # Oscillations
//
// Cyclic dominance makes the three populations oscillate out of phase. The
// period of those oscillations is read off the spectrum of one series:
//
//	rock := sim.Series(history, rps.Rock)
//	period, _ := analysis.DominantPeriod(rock)
package analysis
