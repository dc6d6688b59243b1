package rps

// NeighborSlots is the size of the Moore neighborhood.
const NeighborSlots = 8

// offsets lists the Moore neighborhood as (dy, dx) pairs. Slot numbers used
// by settlement and mobility index into this table.
var offsets = [NeighborSlots][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// NeighborCounts holds, for one cell, how many of its 8 neighbor slots hold
// each state. Empty is counted too.
type NeighborCounts [NumStates]uint8

// NonEmpty returns the number of occupied neighbor slots.
func (c NeighborCounts) NonEmpty() int { return NeighborSlots - int(c[Empty]) }

// Of returns the number of neighbor slots holding s.
func (c NeighborCounts) Of(s Species) int { return int(c[s]) }

// NeighborIndex returns the linear index of the cell in the given slot
// around (x, y).
func (g *Grid) NeighborIndex(x, y, slot int) int {
	o := offsets[slot]
	nx := (x + o[1] + g.w) % g.w
	ny := (y + o[0] + g.h) % g.h
	return ny*g.w + nx
}

// Neighbors returns the 8 Moore neighbor states of (x, y) in slot order.
func (g *Grid) Neighbors(x, y int) [NeighborSlots]Species {
	x, y = g.Wrap(x, y)
	var out [NeighborSlots]Species
	for k := range offsets {
		out[k] = g.cells[g.NeighborIndex(x, y, k)]
	}
	return out
}

// Neighborhood is the per-cell neighbor census of one grid snapshot.
type Neighborhood struct {
	w, h   int
	counts []NeighborCounts
}

// NewNeighborhood allocates a census buffer for a w×h grid.
func NewNeighborhood(w, h int) *Neighborhood {
	return &Neighborhood{w: w, h: h, counts: make([]NeighborCounts, w*h)}
}

// SampleNeighborhood computes the census of g into a new buffer.
func SampleNeighborhood(g *Grid) *Neighborhood {
	nb := NewNeighborhood(g.w, g.h)
	nb.Sample(g, 0)
	return nb
}

// At returns the census of the cell at linear index i.
func (nb *Neighborhood) At(i int) NeighborCounts { return nb.counts[i] }

// AtXY returns the census of the cell at (x, y).
func (nb *Neighborhood) AtXY(x, y int) NeighborCounts { return nb.counts[y*nb.w+x] }

// NonEmpty returns the number of occupied neighbor slots of cell i.
func (nb *Neighborhood) NonEmpty(i int) int { return nb.counts[i].NonEmpty() }

// CountOf returns how many neighbor slots of cell i hold s.
func (nb *Neighborhood) CountOf(i int, s Species) int { return nb.counts[i].Of(s) }

// Sample recomputes the census from g. Only g is read; rows are split across
// workers.
func (nb *Neighborhood) Sample(g *Grid, workers int) {
	if nb.w != g.w || nb.h != g.h {
		nb.w, nb.h = g.w, g.h
		nb.counts = make([]NeighborCounts, g.w*g.h)
	}
	w, h := g.w, g.h
	cells := g.cells
	ParallelFor(h, workers, func(start, end int) {
		for y := start; y < end; y++ {
			up := (y - 1 + h) % h * w
			mid := y * w
			down := (y + 1) % h * w
			for x := 0; x < w; x++ {
				left := (x - 1 + w) % w
				right := (x + 1) % w
				var c NeighborCounts
				c[cells[up+left]]++
				c[cells[up+x]]++
				c[cells[up+right]]++
				c[cells[mid+left]]++
				c[cells[mid+right]]++
				c[cells[down+left]]++
				c[cells[down+x]]++
				c[cells[down+right]]++
				nb.counts[mid+x] = c
			}
		}
	})
}
