package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

const (
	DefaultWidth        = 512
	DefaultHeight       = 512
	DefaultDensity      = 0.25
	DefaultSettle       = 0.25
	DefaultCompetition  = 0.5
	DefaultMobility     = 0.25
	DefaultSteps        = 1000
	DefaultSaveInterval = 5
	DefaultCountEvery   = 1
	DefaultDataDir      = ".rpsim"
)

var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrInvalidRates  = errors.New("config: rates must be non-negative with a positive sum")
)

type Config struct {
	Width           int               `yaml:"width"`
	Height          int               `yaml:"height"`
	Density         float64           `yaml:"density"`
	Probabilities   rps.Probabilities `yaml:"probabilities"`
	Seed            int64             `yaml:"seed"`
	Steps           int               `yaml:"steps"`
	Workers         int               `yaml:"workers"`
	SaveInterval    int               `yaml:"save_interval"`
	CountEvery      int               `yaml:"count_every"`
	HistoryCapacity int               `yaml:"history_capacity"`
	RecordSeed      bool              `yaml:"record_seed"`
	DataDir         string            `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Density: DefaultDensity,
		Probabilities: rps.Probabilities{
			Settle:      DefaultSettle,
			Competition: DefaultCompetition,
			Mobility:    DefaultMobility,
		},
		Steps:        DefaultSteps,
		SaveInterval: DefaultSaveInterval,
		CountEvery:   DefaultCountEvery,
		RecordSeed:   true,
		DataDir:      DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base. Keys missing from the file keep the
// values of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Sim().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps %d is negative", ErrInvalidConfig, c.Steps)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("%w: save_interval %d is negative", ErrInvalidConfig, c.SaveInterval)
	}
	return nil
}

// Sim converts c into a simulator configuration.
func (c *Config) Sim() sim.Config {
	return sim.Config{
		Width:           c.Width,
		Height:          c.Height,
		Density:         c.Density,
		Probabilities:   c.Probabilities,
		Seed:            c.Seed,
		Workers:         c.Workers,
		RecordSeed:      c.RecordSeed,
		CountEvery:      c.CountEvery,
		HistoryCapacity: c.HistoryCapacity,
	}
}

// FromRates turns three non-negative raw rates into probabilities by
// dividing each by their sum.
func FromRates(settle, competition, mobility float64) (rps.Probabilities, error) {
	for _, r := range []float64{settle, competition, mobility} {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return rps.Probabilities{}, fmt.Errorf("%w: got %v", ErrInvalidRates, r)
		}
	}
	sum := settle + competition + mobility
	if sum <= 0 {
		return rps.Probabilities{}, ErrInvalidRates
	}
	return rps.Probabilities{
		Settle:      settle / sum,
		Competition: competition / sum,
		Mobility:    mobility / sum,
	}, nil
}
