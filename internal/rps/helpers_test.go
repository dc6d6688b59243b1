package rps

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

// parseGrid reads rows written with '.', 'R', 'P' and 'S'.
func parseGrid(rows ...string) (*Grid, error) {
	out := make([][]Species, len(rows))
	for y, row := range rows {
		out[y] = make([]Species, len(row))
		for x, ch := range row {
			switch ch {
			case '.':
				out[y][x] = Empty
			case 'R':
				out[y][x] = Rock
			case 'P':
				out[y][x] = Paper
			case 'S':
				out[y][x] = Scissors
			default:
				return nil, fmt.Errorf("bad cell %q at (%d,%d)", ch, x, y)
			}
		}
	}
	return GridFromRows(out)
}

func mustGrid(t testing.TB, rows ...string) *Grid {
	t.Helper()
	g, err := parseGrid(rows...)
	if err != nil {
		t.Fatalf("parse grid: %v", err)
	}
	return g
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}
