// Package sweep searches the probability space for settings that optimize
// a run metric.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rpsim/internal/metrics"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

var ErrEmptyAxis = errors.New("sweep axis has no values")

// Point is one evaluated probability triple.
type Point struct {
	Probabilities rps.Probabilities
	Score         float64
}

// Objective scores probability triples by the ensemble mean of one metric.
type Objective struct {
	Base     sim.Config
	Metric   string
	Steps    int
	Runs     int
	Seed     int64
	Maximize bool
	Log      *slog.Logger
}

// Evaluate runs the ensemble for p and returns the mean metric value.
func (o *Objective) Evaluate(ctx context.Context, p rps.Probabilities) (float64, error) {
	if _, err := metrics.ByName(o.Metric, p); err != nil {
		return 0, err
	}
	cfg := o.Base
	cfg.Probabilities = p

	newMetrics := func() []sim.Metric {
		m, _ := metrics.ByName(o.Metric, p)
		return []sim.Metric{m}
	}
	runs := max(1, o.Runs)
	results, err := sim.NewEnsemble(cfg, runs, o.Seed, newMetrics).WithLogger(o.Log).Run(ctx, o.Steps)
	if err != nil {
		return 0, fmt.Errorf("evaluate %+v: %w", p, err)
	}
	return sim.MeanMetric(results, o.Metric), nil
}

// better reports whether a beats b in the objective's direction. NaN never
// wins.
func (o *Objective) better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	if o.Maximize {
		return a > b
	}
	return a < b
}

func (o *Objective) worst() float64 {
	if o.Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// GridSearch evaluates every combination of the three axes.
type GridSearch struct {
	Settle      []float64
	Competition []float64
	Mobility    []float64
}

// Size returns the number of grid cells.
func (g *GridSearch) Size() int {
	return len(g.Settle) * len(g.Competition) * len(g.Mobility)
}

// Search scores every cell and returns the best one together with all
// evaluated points in axis order. A failed evaluation aborts the search.
func (g *GridSearch) Search(ctx context.Context, obj *Objective) (Point, []Point, error) {
	if len(g.Settle) == 0 || len(g.Competition) == 0 || len(g.Mobility) == 0 {
		return Point{}, nil, ErrEmptyAxis
	}

	log := obj.Log
	if log == nil {
		log = slog.Default()
	}

	best := Point{Score: obj.worst()}
	points := make([]Point, 0, g.Size())
	for _, settle := range g.Settle {
		for _, compete := range g.Competition {
			for _, mobility := range g.Mobility {
				if err := ctx.Err(); err != nil {
					return best, points, err
				}

				p := rps.Probabilities{Settle: settle, Competition: compete, Mobility: mobility}
				score, err := obj.Evaluate(ctx, p)
				if err != nil {
					return best, points, err
				}
				pt := Point{Probabilities: p, Score: score}
				points = append(points, pt)
				log.Debug("sweep cell", "probabilities", p, obj.Metric, score)

				if obj.better(score, best.Score) {
					best = pt
				}
			}
		}
	}

	log.Info("sweep complete", "cells", len(points), "best", best.Probabilities, obj.Metric, best.Score)
	return best, points, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
