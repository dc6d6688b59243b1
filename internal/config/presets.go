package config

import (
	"sort"

	"github.com/san-kum/rpsim/internal/rps"
)

var Presets = map[string]*Config{
	"default": {
		Width: 512, Height: 512, Density: 0.25, Steps: 1000,
		Probabilities: rps.Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25},
	},
	"balanced": {
		Width: 512, Height: 512, Density: 0.5, Steps: 10000,
		Probabilities: rps.Probabilities{Settle: 1.0 / 3, Competition: 1.0 / 3, Mobility: 1.0 / 3},
	},
	"small": {
		Width: 64, Height: 64, Density: 0.5, Steps: 500,
		Probabilities: rps.Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25},
	},
	"static": {
		Width: 256, Height: 256, Density: 0.5, Steps: 2000,
		Probabilities: rps.Probabilities{Settle: 0.3, Competition: 0.3, Mobility: 0},
	},
	"mobile": {
		Width: 256, Height: 256, Density: 0.5, Steps: 2000,
		Probabilities: rps.Probabilities{Settle: 0.2, Competition: 0.2, Mobility: 0.6},
	},
	"aggressive": {
		Width: 256, Height: 256, Density: 0.75, Steps: 2000,
		Probabilities: rps.Probabilities{Settle: 0.1, Competition: 0.9, Mobility: 0.1},
	},
	"sparse": {
		Width: 256, Height: 256, Density: 0.05, Steps: 3000,
		Probabilities: rps.Probabilities{Settle: 0.05, Competition: 0.5, Mobility: 0.25},
	},
}

// GetPreset returns a copy of the named preset on top of the defaults, or
// nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Width = p.Width
	cfg.Height = p.Height
	cfg.Density = p.Density
	cfg.Steps = p.Steps
	cfg.Probabilities = p.Probabilities
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
