package metrics

import (
	"math"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

// Entropy averages the lattice entropy over the observed steps. With every
// greater than one only every n-th step is sampled. Infinite samples are
// skipped and counted separately.
type Entropy struct {
	name     string
	probs    rps.Probabilities
	every    int
	sum      float64
	samples  int
	infinite int
}

func NewEntropy(p rps.Probabilities, every int) *Entropy {
	if every < 1 {
		every = 1
	}
	return &Entropy{
		name:  "mean_entropy",
		probs: p,
		every: every,
	}
}

func (e *Entropy) Name() string { return e.name }

func (e *Entropy) Observe(step int, g *rps.Grid, stats rps.StepStats) {
	if step%e.every != 0 {
		return
	}
	e.add(rps.Entropy(g, e.probs))
}

// ObserveRecord samples a counted step from its record. The record must
// have been produced with the same probabilities.
func (e *Entropy) ObserveRecord(r sim.Record) {
	if r.Step%e.every != 0 {
		return
	}
	e.add(r.Entropy)
}

func (e *Entropy) add(h float64) {
	if math.IsInf(h, 0) {
		e.infinite++
		return
	}
	e.sum += h
	e.samples++
}

func (e *Entropy) Value() float64 {
	if e.samples == 0 {
		if e.infinite > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return e.sum / float64(e.samples)
}

// Infinite returns how many sampled steps had unbounded entropy.
func (e *Entropy) Infinite() int { return e.infinite }

func (e *Entropy) Reset() {
	e.sum = 0
	e.samples = 0
	e.infinite = 0
}
