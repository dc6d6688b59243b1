package rps

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		param string
	}{
		{"zero width", 0, 4, "width"},
		{"negative width", -3, 4, "width"},
		{"zero height", 4, 0, "height"},
		{"negative height", 4, -1, "height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.w, tt.h)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("expected ErrInvalidDimensions, got %v", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Param != tt.param {
				t.Errorf("expected ParamError for %s, got %v", tt.param, err)
			}
		})
	}
}

func TestSeed_InvalidDensity(t *testing.T) {
	for _, d := range []float64{-0.1, 1.01, math.NaN()} {
		if _, err := Seed(4, 4, d, newRand(1)); !errors.Is(err, ErrDensityBounds) {
			t.Errorf("density %v: expected ErrDensityBounds, got %v", d, err)
		}
	}
}

func TestSeed_DensityExtremes(t *testing.T) {
	empty, err := Seed(16, 9, 0, newRand(1))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if c := empty.Counts(); c[Empty] != 16*9 {
		t.Errorf("density 0: expected all empty, got %v", c)
	}

	full, err := Seed(16, 9, 1, newRand(1))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	c := full.Counts()
	if c[Empty] != 0 {
		t.Errorf("density 1: expected no empty cells, got %d", c[Empty])
	}
	if c.Surviving() != 3 {
		t.Errorf("density 1 on 144 cells should contain every species, got %v", c)
	}
}

func TestSeed_Reproducible(t *testing.T) {
	a, _ := Seed(32, 32, 0.4, newRand(99))
	b, _ := Seed(32, 32, 0.4, newRand(99))
	if !a.Equal(b) {
		t.Error("same seed produced different grids")
	}

	c, _ := Seed(32, 32, 0.4, newRand(100))
	if a.Equal(c) {
		t.Error("different seeds produced identical grids")
	}
}

func TestSeed_DensityApproximate(t *testing.T) {
	g, _ := Seed(200, 200, 0.25, newRand(7))
	frac := float64(g.Counts().Occupied()) / float64(g.Len())
	if math.Abs(frac-0.25) > 0.02 {
		t.Errorf("expected occupied fraction ~0.25, got %.4f", frac)
	}
}

func TestGrid_Wrap(t *testing.T) {
	g, _ := NewGrid(5, 3)
	tests := []struct {
		x, y, wx, wy int
	}{
		{0, 0, 0, 0},
		{-1, 0, 4, 0},
		{5, 0, 0, 0},
		{2, -1, 2, 2},
		{-6, 7, 4, 1},
	}
	for _, tt := range tests {
		x, y := g.Wrap(tt.x, tt.y)
		if x != tt.wx || y != tt.wy {
			t.Errorf("Wrap(%d,%d) = (%d,%d), want (%d,%d)", tt.x, tt.y, x, y, tt.wx, tt.wy)
		}
	}
}

func TestGrid_CountsBySpecies(t *testing.T) {
	g := mustGrid(t,
		"RRP.",
		"S..P",
	)
	got := g.CountsBySpecies()
	want := map[Species]int{Rock: 2, Paper: 2, Scissors: 1}
	for s, n := range want {
		if got[s] != n {
			t.Errorf("%s: got %d, want %d", s, got[s], n)
		}
	}
	if _, ok := got[Empty]; ok {
		t.Error("CountsBySpecies should not report empty cells")
	}
	if c := g.Counts(); c.Total() != 8 || c.Occupied() != 5 {
		t.Errorf("unexpected totals: %v", c)
	}
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := mustGrid(t, "RP", "S.")
	c := g.Clone()
	c.Set(0, 0, Empty)
	if g.At(0, 0) != Rock {
		t.Error("mutating clone changed the original")
	}
}

func TestGrid_CopyFromMismatch(t *testing.T) {
	a, _ := NewGrid(2, 2)
	b, _ := NewGrid(3, 2)
	if err := a.CopyFrom(b); !errors.Is(err, ErrGridMismatch) {
		t.Errorf("expected ErrGridMismatch, got %v", err)
	}
}

func TestGridFromBytes(t *testing.T) {
	g := mustGrid(t, "R.P", "SSR")
	back, err := GridFromBytes(3, 2, g.Bytes())
	if err != nil {
		t.Fatalf("GridFromBytes failed: %v", err)
	}
	if !back.Equal(g) {
		t.Error("bytes did not rebuild the same grid")
	}

	if _, err := GridFromBytes(2, 2, []byte{0, 1, 2, 4}); err == nil {
		t.Error("expected error for state 4")
	}
	if _, err := GridFromBytes(2, 2, []byte{0, 1}); !errors.Is(err, ErrGridMismatch) {
		t.Errorf("expected ErrGridMismatch for short buffer, got %v", err)
	}
}

func TestProbabilities_Validate(t *testing.T) {
	tests := []struct {
		name  string
		p     Probabilities
		param string
	}{
		{"valid", Probabilities{0.25, 0.5, 0.25}, ""},
		{"sum above one is fine", Probabilities{1, 1, 1}, ""},
		{"negative settle", Probabilities{-0.1, 0.5, 0.5}, "settle"},
		{"competition above one", Probabilities{0.1, 1.5, 0.5}, "competition"},
		{"nan mobility", Probabilities{0.1, 0.5, math.NaN()}, "mobility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.param == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Param != tt.param {
				t.Fatalf("expected ParamError for %s, got %v", tt.param, err)
			}
			if !errors.Is(err, ErrProbabilityBounds) {
				t.Errorf("expected ErrProbabilityBounds, got %v", err)
			}
		})
	}
}

func TestSpecies_Threat(t *testing.T) {
	tests := map[Species]Species{
		Rock:     Paper,
		Paper:    Scissors,
		Scissors: Rock,
		Empty:    Empty,
	}
	for s, want := range tests {
		if got := s.Threat(); got != want {
			t.Errorf("%s.Threat() = %s, want %s", s, got, want)
		}
	}
}
