package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/rpsim/internal/rps"
)

// Refine runs a Nelder-Mead search starting from start, evaluating at most
// evals probability triples. Candidates are clamped into [0,1] before they
// are simulated. It returns the best point seen, which is never worse than
// start.
func Refine(ctx context.Context, obj *Objective, start Point, evals int) (Point, error) {
	log := obj.Log
	if log == nil {
		log = slog.Default()
	}

	best := start
	var evalErr error
	count := 0

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil {
				return math.Inf(1)
			}
			p := fromVector(x)
			score, err := obj.Evaluate(ctx, p)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			count++
			log.Debug("refine eval", "eval", count, "probabilities", p, obj.Metric, score)
			if obj.better(score, best.Score) {
				best = Point{Probabilities: p, Score: score}
			}
			if math.IsNaN(score) {
				return math.Inf(1)
			}
			if obj.Maximize {
				return -score
			}
			return score
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: evals,
		Concurrent:      0,
	}
	method := &optimize.NelderMead{SimplexSize: 0.1}

	_, err := optimize.Minimize(problem, toVector(start.Probabilities), settings, method)
	if evalErr != nil {
		return best, fmt.Errorf("refine: %w", evalErr)
	}
	if err != nil {
		log.Debug("refine stopped", "evals", count, "reason", err)
	}

	log.Info("refine complete", "evals", count, "best", best.Probabilities, obj.Metric, best.Score)
	return best, nil
}

func toVector(p rps.Probabilities) []float64 {
	return []float64{p.Settle, p.Competition, p.Mobility}
}

func fromVector(x []float64) rps.Probabilities {
	return rps.Probabilities{
		Settle:      clampUnit(x[0]),
		Competition: clampUnit(x[1]),
		Mobility:    clampUnit(x[2]),
	}
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
