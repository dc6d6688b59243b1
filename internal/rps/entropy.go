package rps

import "math"

// LogRelations returns the 4×4 table of base-2 log relation weights between a
// cell's state (row) and a neighbor's state (column).
func LogRelations(p Probabilities) [NumStates][NumStates]float64 {
	var q [NumStates][NumStates]float64
	settle := math.Log2(1 - p.Settle)
	compete := math.Log2(1 - p.Competition)
	for a := 0; a < NumStates; a++ {
		for b := 0; b < NumStates; b++ {
			switch {
			case a == b:
				q[a][b] = 0
			case a == int(Empty) || b == int(Empty):
				q[a][b] = settle
			default:
				q[a][b] = compete
			}
		}
	}
	return q
}

// Entropy returns the boundary complexity of g: the negated sum over every
// cell-neighbor pair of π(cell)·log2 q(cell, neighbor)/8, divided by the
// square root of the cell count. A probability of 1 makes the matching
// unlike adjacencies contribute +Inf.
//
// Row partial sums are combined in row order, so repeated calls on the same
// grid return identical bits.
func Entropy(g *Grid, p Probabilities) float64 {
	return EntropyWorkers(g, p, 0)
}

// EntropyWorkers is Entropy with an explicit worker count.
func EntropyWorkers(g *Grid, p Probabilities, workers int) float64 {
	n := float64(len(g.cells))
	counts := g.Counts()
	var pi [NumStates]float64
	for s := range pi {
		pi[s] = float64(counts[s]) / n
	}
	logQ := LogRelations(p)

	w, h := g.w, g.h
	cells := g.cells
	partial := make([]float64, h)

	ParallelFor(h, workers, func(start, end int) {
		for y := start; y < end; y++ {
			up := (y - 1 + h) % h * w
			mid := y * w
			down := (y + 1) % h * w
			row := 0.0
			for x := 0; x < w; x++ {
				left := (x - 1 + w) % w
				right := (x + 1) % w
				a := cells[mid+x]
				q := &logQ[a]
				pairs := q[cells[up+left]] + q[cells[up+x]] + q[cells[up+right]] +
					q[cells[mid+left]] + q[cells[mid+right]] +
					q[cells[down+left]] + q[cells[down+x]] + q[cells[down+right]]
				if pairs != 0 {
					row += pi[a] * pairs / NeighborSlots
				}
			}
			partial[y] = row
		}
	})

	total := 0.0
	for _, v := range partial {
		total -= v
	}
	return total / math.Sqrt(n)
}
