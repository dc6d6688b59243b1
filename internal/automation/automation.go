package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/metrics"
	"github.com/san-kum/rpsim/internal/sim"
	"github.com/san-kum/rpsim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Config holds any subset of
// the config file keys and is applied on top of the preset.
type ScenarioStep struct {
	Label  string    `yaml:"label"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Resolve builds the configuration of step i. A step without an explicit
// seed runs with the scenario seed plus its index.
func (s *Scenario) Resolve(i int) (*config.Config, error) {
	step := s.Steps[i]

	cfg := config.DefaultConfig()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("step %d: unknown preset %q (available: %v)", i+1, step.Preset, config.ListPresets())
		}
	}
	if !step.Config.IsZero() {
		if err := step.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d config: %w", i+1, err)
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.Seed + int64(i)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("step %d: %w", i+1, err)
	}
	return cfg, nil
}

// Outcome is one finished run.
type Outcome struct {
	Label     string
	RunID     string
	Config    *config.Config
	Snapshots int
	Result    *sim.Result
}

// Execute runs cfg with the standard metrics. When st is non-nil the run
// is stored: config.yaml up front, history.csv streamed, snapshots.bin every
// save interval (step 0 included) and metadata.json at the end. A cancelled
// run is still stored and returned together with the context error.
func Execute(ctx context.Context, cfg *config.Config, st *storage.Store, log *slog.Logger) (*Outcome, error) {
	if log == nil {
		log = slog.Default()
	}
	simCfg := cfg.Sim()
	opts := []sim.Option{sim.WithLogger(log)}
	for _, m := range metrics.Standard(cfg.Probabilities, max(1, cfg.CountEvery)) {
		opts = append(opts, sim.WithMetric(m))
	}

	out := &Outcome{Config: cfg}
	var run *storage.Run
	var snaps *storage.SnapshotWriter
	started := false
	if st != nil {
		var err error
		run, err = st.Create(cfg.Width, cfg.Height)
		if err != nil {
			return nil, err
		}
		defer func() {
			if started {
				run.Close()
				return
			}
			// nothing ran, so there is no metadata.json to make the run listable
			if err := run.Discard(); err != nil {
				log.Warn("discarding run failed", "run_id", run.ID, "error", err)
			}
		}()
		out.RunID = run.ID

		if err := run.WriteConfig(cfg); err != nil {
			return nil, err
		}
		history, err := run.History()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithHistorySink(history))

		if cfg.SaveInterval > 0 {
			snaps, err = run.Snapshots(cfg.Width, cfg.Height, cfg.SaveInterval, log)
			if err != nil {
				return nil, err
			}
			opts = append(opts, sim.WithObserver(snaps))
		}
	}

	s, err := sim.New(simCfg, opts...)
	if err != nil {
		return nil, err
	}
	if snaps != nil {
		snaps.Save(0, s.Grid())
	}

	result, runErr := s.Run(ctx, cfg.Steps)
	if result == nil {
		return nil, runErr
	}
	started = true
	out.Result = result

	if run != nil {
		if err := run.Finish(storage.NewMetadata(simCfg, cfg.SaveInterval, result)); err != nil {
			return out, err
		}
		if snaps != nil {
			out.Snapshots = snaps.Written()
		}
		log.Info("run stored", "run_id", run.ID, "snapshots", out.Snapshots)
	}
	return out, runErr
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log *slog.Logger) ([]*Outcome, error) {
	if log == nil {
		log = slog.Default()
	}
	outcomes := make([]*Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := scenario.Resolve(i)
		if err != nil {
			return outcomes, err
		}

		label := step.Label
		if label == "" {
			label = fmt.Sprintf("step%d", i+1)
		}
		log.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "label", label)

		out, err := Execute(ctx, cfg, st, log.With("label", label))
		if out != nil {
			out.Label = label
			outcomes = append(outcomes, out)
		}
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, label, err)
		}
	}

	return outcomes, nil
}
