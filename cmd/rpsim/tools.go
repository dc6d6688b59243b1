package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sweep"
)

var (
	sweepMetric   string
	sweepMaximize bool
	sweepPoints   int
	sweepRuns     int
	sweepRefine   int
)

// benchSim times steps and entropy evaluations for several worker counts.
func benchSim(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	n := cfg.Steps
	if !cmd.Flags().Changed("steps") {
		n = 100
	}

	workerCounts := []int{1, 2, 4, runtime.NumCPU()}
	if cmd.Flags().Changed("workers") {
		workerCounts = []int{cfg.Workers}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %dx%d lattice, %d steps\n\n", cfg.Width, cfg.Height, n)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSTEP\tSTEPS/SEC\tCELLS/SEC\tENTROPY")

	seen := map[int]bool{}
	for _, workers := range workerCounts {
		if seen[workers] {
			continue
		}
		seen[workers] = true

		rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0))
		g, err := rps.Seed(cfg.Width, cfg.Height, cfg.Density, rng)
		if err != nil {
			return err
		}
		engine := rps.NewEngine(workers)

		start := time.Now()
		for i := 0; i < n; i++ {
			engine.Step(g, cfg.Probabilities, rng)
		}
		stepTime := time.Since(start) / time.Duration(max(1, n))

		start = time.Now()
		for i := 0; i < 10; i++ {
			rps.EntropyWorkers(g, cfg.Probabilities, workers)
		}
		entropyTime := time.Since(start) / 10

		perSec := float64(time.Second) / float64(stepTime)
		fmt.Fprintf(w, "%d\t%v\t%.1f\t%.3g\t%v\n",
			workers,
			stepTime.Round(time.Microsecond),
			perSec,
			perSec*float64(g.Len()),
			entropyTime.Round(time.Microsecond),
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if sweepPoints < 1 {
		return fmt.Errorf("--points must be at least 1, got %d", sweepPoints)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// per-replicate run logs drown the sweep progress
	log := slog.Default()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if log.Enabled(ctx, slog.LevelDebug) {
		quiet = log
	}

	obj := &sweep.Objective{
		Base:     cfg.Sim(),
		Metric:   sweepMetric,
		Steps:    cfg.Steps,
		Runs:     sweepRuns,
		Seed:     cfg.Seed,
		Maximize: sweepMaximize,
		Log:      quiet,
	}
	axis := sweep.Linspace(0, 1, sweepPoints)
	grid := &sweep.GridSearch{Settle: axis, Competition: axis, Mobility: axis}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %d cells x %d runs, %d steps each, metric %s\n\n", grid.Size(), max(1, sweepRuns), cfg.Steps, sweepMetric)
	start := time.Now()

	best, points, err := grid.Search(ctx, obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SETTLE\tCOMPETE\tMOBILITY\tSCORE")
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.6f\n", p.Probabilities.Settle, p.Probabilities.Competition, p.Probabilities.Mobility, p.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweepRefine > 0 {
		best, err = sweep.Refine(ctx, obj, best, sweepRefine)
		if err != nil {
			return err
		}
	}

	log.Info("sweep finished", "elapsed", time.Since(start).Round(time.Millisecond))
	p := best.Probabilities
	fmt.Fprintf(out, "\nbest: settle=%.4f competition=%.4f mobility=%.4f %s=%.6f\n",
		p.Settle, p.Competition, p.Mobility, sweepMetric, best.Score)
	return nil
}
