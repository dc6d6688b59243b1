package rps

import (
	"fmt"
	"math/rand/v2"
)

// Grid stores the lattice in row-major order with toroidal wrapping.
// Dimensions are fixed at construction.
type Grid struct {
	w, h  int
	cells []Species
}

// NewGrid allocates an all-Empty grid.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 {
		return nil, &ParamError{Param: "width", Value: float64(w), Err: ErrInvalidDimensions}
	}
	if h <= 0 {
		return nil, &ParamError{Param: "height", Value: float64(h), Err: ErrInvalidDimensions}
	}
	return &Grid{w: w, h: h, cells: make([]Species, w*h)}, nil
}

// GridFromRows builds a grid from rows of equal length.
func GridFromRows(rows [][]Species) (*Grid, error) {
	if len(rows) == 0 {
		return nil, &ParamError{Param: "height", Value: 0, Err: ErrInvalidDimensions}
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.w {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), g.w, ErrGridMismatch)
		}
		for x, s := range row {
			if !s.Valid() {
				return nil, fmt.Errorf("cell (%d,%d) holds invalid state %d", x, y, s)
			}
			g.cells[y*g.w+x] = s
		}
	}
	return g, nil
}

// Seed builds a w×h grid where each cell is, with probability density, one of
// Rock, Paper or Scissors chosen uniformly, and Empty otherwise.
func Seed(w, h int, density float64, rng *rand.Rand) (*Grid, error) {
	if err := ValidateDensity(density); err != nil {
		return nil, err
	}
	g, err := NewGrid(w, h)
	if err != nil {
		return nil, err
	}
	g.fill(density, rng)
	return g, nil
}

// Reseed overwrites every cell using the same rule as Seed.
func (g *Grid) Reseed(density float64, rng *rand.Rand) error {
	if err := ValidateDensity(density); err != nil {
		return err
	}
	g.fill(density, rng)
	return nil
}

func (g *Grid) fill(density float64, rng *rand.Rand) {
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i] = Species(1 + rng.IntN(3))
		} else {
			g.cells[i] = Empty
		}
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Cells exposes the backing slice. Callers must not retain it across steps.
func (g *Grid) Cells() []Species { return g.cells }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.w + x }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(x, y int) (int, int) {
	x = (x%g.w + g.w) % g.w
	y = (y%g.h + g.h) % g.h
	return x, y
}

// At returns the state at (x, y) after wrapping.
func (g *Grid) At(x, y int) Species {
	x, y = g.Wrap(x, y)
	return g.cells[y*g.w+x]
}

// Set writes s at (x, y) after wrapping.
func (g *Grid) Set(x, y int, s Species) {
	x, y = g.Wrap(x, y)
	g.cells[y*g.w+x] = s
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{w: g.w, h: g.h, cells: make([]Species, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// CopyFrom overwrites g with the contents of src.
func (g *Grid) CopyFrom(src *Grid) error {
	if g.w != src.w || g.h != src.h {
		return fmt.Errorf("copy %dx%d into %dx%d: %w", src.w, src.h, g.w, g.h, ErrGridMismatch)
	}
	copy(g.cells, src.cells)
	return nil
}

// Equal reports whether both grids have the same dimensions and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Counts enumerates the grid and returns the number of cells per state.
func (g *Grid) Counts() Counts {
	var c Counts
	for _, s := range g.cells {
		c[s]++
	}
	return c
}

// CountsBySpecies returns the occupancy of each non-empty species.
func (g *Grid) CountsBySpecies() map[Species]int {
	c := g.Counts()
	return map[Species]int{
		Rock:     c[Rock],
		Paper:    c[Paper],
		Scissors: c[Scissors],
	}
}

// Rows returns the grid as a fresh 2D array of small integers (0-3).
func (g *Grid) Rows() [][]uint8 {
	rows := make([][]uint8, g.h)
	for y := range rows {
		rows[y] = make([]uint8, g.w)
		for x := range rows[y] {
			rows[y][x] = uint8(g.cells[y*g.w+x])
		}
	}
	return rows
}

// Bytes returns the cells as a fresh row-major byte slice.
func (g *Grid) Bytes() []byte {
	b := make([]byte, len(g.cells))
	for i, s := range g.cells {
		b[i] = byte(s)
	}
	return b
}

// GridFromBytes builds a grid from a row-major byte slice of length w*h.
func GridFromBytes(w, h int, b []byte) (*Grid, error) {
	g, err := NewGrid(w, h)
	if err != nil {
		return nil, err
	}
	if len(b) != len(g.cells) {
		return nil, fmt.Errorf("have %d bytes for %dx%d grid: %w", len(b), w, h, ErrGridMismatch)
	}
	for i, v := range b {
		s := Species(v)
		if !s.Valid() {
			return nil, fmt.Errorf("cell %d holds invalid state %d", i, v)
		}
		g.cells[i] = s
	}
	return g, nil
}
