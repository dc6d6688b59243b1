// Package rps implements the spatial Rock-Paper-Scissors lattice model.
//
// The package defines the core state and the per-step dynamics:
//
//   - [Grid]: toroidal row-major lattice of [Species] values
//   - [Neighborhood]: per-cell Moore neighbor counts sampled from one snapshot
//   - [Engine]: synchronous transition engine (settlement, domination, mobility)
//   - [Entropy]: boundary complexity of a grid
//
// # Example
//
//	rng := rand.New(rand.NewPCG(42, 0))
//	g, _ := rps.Seed(256, 256, 0.5, rng)
//	eng := rps.NewEngine(0)
//	for i := 0; i < 1000; i++ {
//	    eng.Step(g, probs, rng)
//	}
//	h := rps.Entropy(g, probs)
//
// # Thread Safety
//
// A Grid must not be read while an Engine is stepping it. Engine instances are
// NOT safe for concurrent use; they parallelize internally over rows.
package rps
