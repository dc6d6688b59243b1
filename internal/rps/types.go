package rps

import "log/slog"

// Species is the state of a single lattice cell.
type Species uint8

const (
	Empty Species = iota
	Rock
	Paper
	Scissors
)

// NumStates is the number of distinct cell states, Empty included.
const NumStates = 4

// Occupants lists the non-empty species in value order.
var Occupants = [3]Species{Rock, Paper, Scissors}

// Valid reports whether s is one of the four cell states.
func (s Species) Valid() bool { return s <= Scissors }

// Threat returns the species that dominates s. Empty has no threat.
func (s Species) Threat() Species {
	switch s {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	}
	return Empty
}

func (s Species) String() string {
	switch s {
	case Empty:
		return "empty"
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	}
	return "invalid"
}

// Probabilities are the three independent per-neighbor Bernoulli parameters.
// They are not required to sum to one.
type Probabilities struct {
	Settle      float64 `yaml:"settle" json:"settle"`
	Competition float64 `yaml:"competition" json:"competition"`
	Mobility    float64 `yaml:"mobility" json:"mobility"`
}

// Validate checks that every probability lies in [0,1].
func (p Probabilities) Validate() error {
	if err := checkUnit("settle", p.Settle, ErrProbabilityBounds); err != nil {
		return err
	}
	if err := checkUnit("competition", p.Competition, ErrProbabilityBounds); err != nil {
		return err
	}
	return checkUnit("mobility", p.Mobility, ErrProbabilityBounds)
}

// Counts holds the number of cells per state, indexed by Species.
type Counts [NumStates]int

// Occupied returns the number of non-empty cells.
func (c Counts) Occupied() int { return c[Rock] + c[Paper] + c[Scissors] }

// Total returns the number of cells.
func (c Counts) Total() int { return c.Occupied() + c[Empty] }

// Surviving returns how many of the three species are still present.
func (c Counts) Surviving() int {
	n := 0
	for _, s := range Occupants {
		if c[s] > 0 {
			n++
		}
	}
	return n
}

// LogValue implements slog.LogValuer for structured logging.
func (c Counts) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rock", c[Rock]),
		slog.Int("paper", c[Paper]),
		slog.Int("scissors", c[Scissors]),
		slog.Int("empty", c[Empty]),
	)
}
