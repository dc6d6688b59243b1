package rps

import (
	"math"
	"math/rand/v2"
)

// Action is the outcome decided for one cell in one step.
type Action uint8

const (
	ActionNone Action = iota
	ActionSettle
	ActionDominate
	ActionMove
)

func (a Action) String() string {
	switch a {
	case ActionSettle:
		return "settle"
	case ActionDominate:
		return "dominate"
	case ActionMove:
		return "move"
	}
	return "none"
}

// Rates caches the local action probabilities for every possible neighbor
// count, derived from one set of Probabilities.
type Rates struct {
	settle   [NeighborSlots + 1]float64
	dominate [NeighborSlots + 1]float64
	mobility float64
}

// NewRates precomputes 1-(1-p)^n for n in [0,8].
func NewRates(p Probabilities) Rates {
	var r Rates
	for n := 1; n <= NeighborSlots; n++ {
		r.settle[n] = 1 - math.Pow(1-p.Settle, float64(n))
		r.dominate[n] = 1 - math.Pow(1-p.Competition, float64(n))
	}
	r.mobility = 1 - math.Pow(1-p.Mobility, NeighborSlots)
	return r
}

// Settle returns the settlement probability for an empty cell with n
// occupied neighbors.
func (r *Rates) Settle(n int) float64 { return r.settle[n] }

// Dominate returns the domination probability for a cell with n threatening
// neighbors.
func (r *Rates) Dominate(n int) float64 { return r.dominate[n] }

// Mobility returns the per-step move probability of an occupied cell.
func (r *Rates) Mobility() float64 { return r.mobility }

// Draws are the three independent uniforms rolled for one cell.
type Draws struct {
	Settle   float64
	Dominate float64
	Mobility float64
}

// Decide resolves the action of a cell in state s with neighbor census c.
// Priority is Settlement > Domination > Mobility; at most one applies.
func Decide(s Species, c NeighborCounts, r *Rates, d Draws) Action {
	if s == Empty {
		if n := c.NonEmpty(); n > 0 && d.Settle < r.settle[n] {
			return ActionSettle
		}
		return ActionNone
	}
	if n := c.Of(s.Threat()); n > 0 && d.Dominate < r.dominate[n] {
		return ActionDominate
	}
	if d.Mobility < r.mobility {
		return ActionMove
	}
	return ActionNone
}

// StepStats summarizes the actions applied in one step.
type StepStats struct {
	Settled       int `json:"settled"`
	FailedSettles int `json:"failed_settles"`
	Dominated     int `json:"dominated"`
	Moved         int `json:"moved"`
}

// Add accumulates o into s.
func (s *StepStats) Add(o StepStats) {
	s.Settled += o.Settled
	s.FailedSettles += o.FailedSettles
	s.Dominated += o.Dominated
	s.Moved += o.Moved
}

type move struct {
	from, to int32
}

// Engine advances grids one synchronous step at a time. It owns the scratch
// buffers so repeated steps on same-sized grids do not allocate.
type Engine struct {
	workers int

	nb     *Neighborhood
	next   *Grid
	movers [][]move
	rows   []StepStats
	pcgs   []*rand.PCG
	rngs   []*rand.Rand

	last StepStats
}

// NewEngine returns an engine using the given number of workers; zero or
// less means one per CPU.
func NewEngine(workers int) *Engine {
	return &Engine{workers: workers}
}

// LastStats returns the action counts of the most recent step.
func (e *Engine) LastStats() StepStats { return e.last }

func (e *Engine) ensure(w, h int) {
	if e.next != nil && e.next.w == w && e.next.h == h {
		return
	}
	e.nb = NewNeighborhood(w, h)
	e.next = &Grid{w: w, h: h, cells: make([]Species, w*h)}
	e.movers = make([][]move, h)
	e.rows = make([]StepStats, h)
	e.pcgs = make([]*rand.PCG, h)
	e.rngs = make([]*rand.Rand, h)
	for y := range e.pcgs {
		e.pcgs[y] = rand.NewPCG(0, uint64(y))
		e.rngs[y] = rand.New(e.pcgs[y])
	}
}

// Step applies one transition to g in place. All decisions read the pre-step
// grid; results are written to a separate buffer that replaces g's cells at
// the end. Mobility swaps are applied in row-major order of the movers, so a
// later swap overwrites an earlier one that targets the same cell.
//
// One value is drawn from rng per step; each row then uses its own stream
// derived from it, which makes the outcome independent of the worker count.
func (e *Engine) Step(g *Grid, p Probabilities, rng *rand.Rand) StepStats {
	e.ensure(g.w, g.h)
	e.nb.Sample(g, e.workers)
	copy(e.next.cells, g.cells)

	rates := NewRates(p)
	stepSeed := rng.Uint64()

	ParallelFor(g.h, e.workers, func(start, end int) {
		for y := start; y < end; y++ {
			e.decideRow(g, y, &rates, stepSeed)
		}
	})

	cur, next := g.cells, e.next.cells
	var stats StepStats
	for y := 0; y < g.h; y++ {
		for _, m := range e.movers[y] {
			next[m.from] = cur[m.to]
			next[m.to] = cur[m.from]
		}
		stats.Add(e.rows[y])
	}

	g.cells, e.next.cells = e.next.cells, g.cells
	e.last = stats
	return stats
}

// decideRow rolls and resolves every cell of row y. Settlement and
// domination only touch their own cell and are written immediately; moves
// are queued for the sequential pass.
func (e *Engine) decideRow(g *Grid, y int, rates *Rates, stepSeed uint64) {
	e.pcgs[y].Seed(stepSeed, uint64(y))
	r := e.rngs[y]

	w := g.w
	cur, next := g.cells, e.next.cells
	movers := e.movers[y][:0]
	var stats StepStats

	for x := 0; x < w; x++ {
		i := y*w + x
		d := Draws{Settle: r.Float64(), Dominate: r.Float64(), Mobility: r.Float64()}
		slot := r.IntN(NeighborSlots)

		switch Decide(cur[i], e.nb.counts[i], rates, d) {
		case ActionSettle:
			s := cur[g.NeighborIndex(x, y, slot)]
			if s == Empty {
				stats.FailedSettles++
				continue
			}
			next[i] = s
			stats.Settled++
		case ActionDominate:
			next[i] = Empty
			stats.Dominated++
		case ActionMove:
			movers = append(movers, move{from: int32(i), to: int32(g.NeighborIndex(x, y, slot))})
			stats.Moved++
		}
	}

	e.movers[y] = movers
	e.rows[y] = stats
}

// Step returns the successor of g without modifying it.
func Step(g *Grid, p Probabilities, rng *rand.Rand) *Grid {
	next := g.Clone()
	NewEngine(0).Step(next, p, rng)
	return next
}
