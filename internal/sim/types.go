package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/rpsim/internal/rps"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// Config describes one simulation. Zero Workers means one per CPU; zero
// CountEvery disables counting during Run; zero HistoryCapacity keeps every
// record.
type Config struct {
	Width           int
	Height          int
	Density         float64
	Probabilities   rps.Probabilities
	Seed            int64
	Workers         int
	RecordSeed      bool
	CountEvery      int
	HistoryCapacity int
}

func (c Config) Validate() error {
	if c.Width <= 0 {
		return &rps.ParamError{Param: "width", Value: float64(c.Width), Err: rps.ErrInvalidDimensions}
	}
	if c.Height <= 0 {
		return &rps.ParamError{Param: "height", Value: float64(c.Height), Err: rps.ErrInvalidDimensions}
	}
	if err := rps.ValidateDensity(c.Density); err != nil {
		return err
	}
	if err := c.Probabilities.Validate(); err != nil {
		return err
	}
	if c.CountEvery < 0 {
		return fmt.Errorf("%w: count interval %d is negative", ErrInvalidConfig, c.CountEvery)
	}
	if c.HistoryCapacity < 0 {
		return fmt.Errorf("%w: history capacity %d is negative", ErrInvalidConfig, c.HistoryCapacity)
	}
	return nil
}

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(step int, g *rps.Grid, stats rps.StepStats)
	Value() float64
	Reset()
}

// RecordMetric is a Metric that samples counted steps from their history
// record, reusing the entropy already computed for it. Uncounted steps still
// go through Observe.
type RecordMetric interface {
	Metric
	ObserveRecord(r Record)
}

// Observer is notified after every completed step. The grid is only valid
// for the duration of the call and must not be modified.
type Observer interface {
	OnStep(step int, g *rps.Grid)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(step int, g *rps.Grid)

func (f ObserverFunc) OnStep(step int, g *rps.Grid) { f(step, g) }

// HistorySink receives every history record as it is appended.
type HistorySink interface {
	Append(r Record) error
}

// Result summarizes a call to Run. Actions accumulates the per-step action
// counts of the steps taken.
type Result struct {
	Steps       int
	FinalStep   int
	FinalCounts rps.Counts
	Entropy     float64
	Actions     rps.StepStats
	Metrics     map[string]float64
	History     []Record
}
