package sim

import (
	"context"
	"log/slog"
	"sync"
)

// Ensemble runs independent replicates of one configuration that differ
// only in their seed.
type Ensemble struct {
	base      Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
	log       *slog.Logger
}

// NewEnsemble prepares numRuns replicates seeded seedStart, seedStart+1, ...
// newMetrics, when non-nil, builds a fresh metric set for each replicate.
func NewEnsemble(cfg Config, numRuns int, seedStart int64, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{
		base:      cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		metrics:   newMetrics,
		log:       slog.Default(),
	}
}

// WithLogger sets the logger replicates derive theirs from.
func (e *Ensemble) WithLogger(l *slog.Logger) *Ensemble {
	if l != nil {
		e.log = l
	}
	return e
}

func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.base
			cfgCopy.Seed = e.seedStart + int64(idx)
			// replicates already run side by side
			cfgCopy.Workers = 1

			opts := []Option{WithLogger(e.log.With("replicate", idx))}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					opts = append(opts, WithMetric(m))
				}
			}

			s, err := New(cfgCopy, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, steps)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// MeanMetric averages one metric across replicate results.
func MeanMetric(results []*Result, name string) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Metrics[name]
	}
	return sum / float64(len(results))
}
