package rps

import "testing"

func TestNeighbors_Wraparound(t *testing.T) {
	g := mustGrid(t,
		"R...",
		"....",
		"....",
		"...P",
	)

	nb := SampleNeighborhood(g)

	corner := nb.AtXY(3, 3)
	if corner.Of(Rock) != 1 || corner.NonEmpty() != 1 {
		t.Errorf("(3,3) should see the rock across both edges, got %v", corner)
	}
	if got := g.Neighbors(3, 3)[7]; got != Rock {
		t.Errorf("slot 7 of (3,3) = %s, want rock", got)
	}

	origin := nb.AtXY(0, 0)
	if origin.Of(Paper) != 1 || origin.NonEmpty() != 1 {
		t.Errorf("(0,0) should see the paper across both edges, got %v", origin)
	}
	if got := g.Neighbors(0, 0)[0]; got != Paper {
		t.Errorf("slot 0 of (0,0) = %s, want paper", got)
	}

	far := nb.AtXY(2, 1)
	if far.NonEmpty() != 1 || far.Of(Paper) != 0 || far.Of(Rock) != 1 {
		t.Errorf("(2,1) census wrong: %v", far)
	}
}

func TestNeighbors_SingleCell(t *testing.T) {
	g := mustGrid(t, "S")
	nb := SampleNeighborhood(g)

	c := nb.At(0)
	if c.Of(Scissors) != 8 || c.NonEmpty() != 8 {
		t.Errorf("1x1 grid should be its own 8 neighbors, got %v", c)
	}
	for k, s := range g.Neighbors(0, 0) {
		if s != Scissors {
			t.Errorf("slot %d = %s, want scissors", k, s)
		}
	}

	empty := mustGrid(t, ".")
	if n := SampleNeighborhood(empty).At(0).NonEmpty(); n != 0 {
		t.Errorf("empty 1x1 grid: NonEmpty = %d, want 0", n)
	}
}

func TestNeighbors_SingleRow(t *testing.T) {
	g := mustGrid(t, "RP.")
	c := SampleNeighborhood(g).AtXY(2, 0)
	// rows above and below wrap onto the same row
	if c.Of(Rock) != 3 || c.Of(Paper) != 3 || c.Of(Empty) != 2 {
		t.Errorf("single row census wrong: %v", c)
	}
}

func TestSample_MatchesNeighbors(t *testing.T) {
	g, _ := Seed(23, 17, 0.6, newRand(5))

	for _, workers := range []int{1, 3, 0} {
		nb := NewNeighborhood(g.Width(), g.Height())
		nb.Sample(g, workers)
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				var want NeighborCounts
				for _, s := range g.Neighbors(x, y) {
					want[s]++
				}
				if got := nb.AtXY(x, y); got != want {
					t.Fatalf("workers=%d (%d,%d): got %v, want %v", workers, x, y, got, want)
				}
			}
		}
	}
}
