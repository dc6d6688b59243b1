package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

// Standard returns the metric set recorded for every run. Entropy is sampled
// every entropyEvery steps.
func Standard(p rps.Probabilities, entropyEvery int) []sim.Metric {
	return []sim.Metric{
		NewEntropy(p, entropyEvery),
		NewOccupancy(),
		NewCoexistence(),
		NewActivity(),
	}
}

// ByName builds a single metric from its name.
func ByName(name string, p rps.Probabilities) (sim.Metric, error) {
	switch name {
	case "mean_entropy":
		return NewEntropy(p, 1), nil
	case "occupancy":
		return NewOccupancy(), nil
	case "coexistence":
		return NewCoexistence(), nil
	case "activity":
		return NewActivity(), nil
	}
	return nil, fmt.Errorf("unknown metric %q (available: %v)", name, Names())
}

func Names() []string {
	names := []string{"mean_entropy", "occupancy", "coexistence", "activity"}
	sort.Strings(names)
	return names
}
