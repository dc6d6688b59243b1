package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/san-kum/rpsim/internal/rps"
)

// Simulator owns one lattice together with its parameters, random source
// and population history. It is not safe for concurrent use.
type Simulator struct {
	cfg    Config
	log    *slog.Logger
	rng    *rand.Rand
	engine *rps.Engine
	grid   *rps.Grid
	step   int

	history   *History
	sinks     []HistorySink
	metrics   []Metric
	observers []Observer
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetric(m Metric) Option     { return func(s *Simulator) { s.AddMetric(m) } }
func WithObserver(o Observer) Option { return func(s *Simulator) { s.AddObserver(o) } }

func WithHistorySink(h HistorySink) Option {
	return func(s *Simulator) { s.AddHistorySink(h) }
}

// New validates cfg and returns a simulator holding a freshly seeded grid.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}

	s := &Simulator{
		cfg:     cfg,
		log:     slog.Default(),
		engine:  rps.NewEngine(cfg.Workers),
		history: NewHistory(cfg.HistoryCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)       { s.observers = append(s.observers, o) }
func (s *Simulator) AddHistorySink(h HistorySink) { s.sinks = append(s.sinks, h) }

func (s *Simulator) Config() Config { return s.cfg }

// Seed reseeds the grid from the configured seed, rewinds the step counter
// and clears the history. The seed population is recorded when RecordSeed
// is set.
func (s *Simulator) Seed() error {
	s.rng = rand.New(rand.NewPCG(uint64(s.cfg.Seed), 0))

	g, err := rps.Seed(s.cfg.Width, s.cfg.Height, s.cfg.Density, s.rng)
	if err != nil {
		return fmt.Errorf("seed grid: %w", err)
	}
	s.grid = g
	s.step = 0
	s.history.Reset()

	counts := g.Counts()
	s.log.Debug("grid seeded",
		"seed", s.cfg.Seed,
		"width", s.cfg.Width,
		"height", s.cfg.Height,
		"counts", counts,
	)
	if s.cfg.RecordSeed {
		s.record(counts)
	}
	return nil
}

// Step advances the grid by one transition.
func (s *Simulator) Step() rps.StepStats {
	stats := s.engine.Step(s.grid, s.cfg.Probabilities, s.rng)
	s.step++
	return stats
}

// StepCounting advances one step, then enumerates the populations and
// appends them to the history.
func (s *Simulator) StepCounting() (rps.StepStats, Record) {
	stats := s.Step()
	return stats, s.record(s.grid.Counts())
}

func (s *Simulator) record(c rps.Counts) Record {
	r := NewRecord(s.step, c, s.Entropy())
	s.history.Append(r)

	kept := s.sinks[:0]
	for _, sink := range s.sinks {
		if err := sink.Append(r); err != nil {
			s.log.Warn("history sink disabled", "step", s.step, "error", err)
			continue
		}
		kept = append(kept, sink)
	}
	s.sinks = kept
	return r
}

// Grid returns a copy of the current lattice.
func (s *Simulator) Grid() *rps.Grid { return s.grid.Clone() }

func (s *Simulator) Counts() rps.Counts { return s.grid.Counts() }

func (s *Simulator) Entropy() float64 {
	return rps.EntropyWorkers(s.grid, s.cfg.Probabilities, s.cfg.Workers)
}

// History returns a copy of the retained records.
func (s *Simulator) History() []Record { return s.history.Records() }

// StepIndex returns the number of steps taken since the last Seed.
func (s *Simulator) StepIndex() int { return s.step }

// Run advances the simulation by steps transitions. Cancellation is checked
// between steps; a cancelled run returns the partial result together with
// the context error.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps %d is negative", ErrInvalidConfig, steps)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info("run started",
		"from_step", s.step,
		"steps", steps,
		"probabilities", s.cfg.Probabilities,
		"workers", rps.Workers(s.cfg.Workers),
	)

	result := &Result{Metrics: make(map[string]float64)}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			s.log.Warn("run cancelled", "step", s.step, "error", ctx.Err())
			return result, ctx.Err()
		default:
		}

		var (
			stats   rps.StepStats
			r       Record
			counted bool
		)
		if s.cfg.CountEvery > 0 && (s.step+1)%s.cfg.CountEvery == 0 {
			stats, r = s.StepCounting()
			counted = true
			s.log.Debug("step counted", "step", r.Step, "counts", r.Counts(), "entropy", r.Entropy)
		} else {
			stats = s.Step()
		}
		result.Steps++
		result.Actions.Add(stats)

		for _, m := range s.metrics {
			if rm, ok := m.(RecordMetric); ok && counted {
				rm.ObserveRecord(r)
				continue
			}
			m.Observe(s.step, s.grid, stats)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.step, s.grid)
		}
	}

	s.finish(result)
	s.log.Info("run complete",
		"steps", result.Steps,
		"counts", result.FinalCounts,
		"entropy", result.Entropy,
	)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.FinalStep = s.step
	result.FinalCounts = s.grid.Counts()
	result.Entropy = s.Entropy()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.History = s.history.Records()
}
