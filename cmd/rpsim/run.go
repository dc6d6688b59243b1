package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rpsim/internal/automation"
	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/metrics"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
	"github.com/san-kum/rpsim/internal/storage"
	"github.com/san-kum/rpsim/internal/viz"
)

var (
	configFile      string
	preset          string
	width           int
	height          int
	density         float64
	settle          float64
	competition     float64
	mobility        float64
	rates           string
	seed            int64
	steps           int
	workers         int
	saveInterval    int
	countEvery      int
	historyCapacity int
	noStore         bool
)

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&width, "width", config.DefaultWidth, "lattice width")
	f.IntVar(&height, "height", config.DefaultHeight, "lattice height")
	f.Float64Var(&density, "density", config.DefaultDensity, "initial occupied fraction")
	f.Float64Var(&settle, "settle", config.DefaultSettle, "settlement probability per occupied neighbor")
	f.Float64Var(&competition, "competition", config.DefaultCompetition, "domination probability per threatening neighbor")
	f.Float64Var(&mobility, "mobility", config.DefaultMobility, "per-neighbor mobility probability")
	f.StringVar(&rates, "rates", "", "raw rates settle,competition,mobility normalized by their sum")
	f.Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.IntVar(&workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	f.IntVar(&saveInterval, "save-interval", config.DefaultSaveInterval, "snapshot every n steps (0 disables)")
	f.IntVar(&countEvery, "count-every", config.DefaultCountEvery, "record populations every n steps (0 disables)")
	f.IntVar(&historyCapacity, "history-capacity", 0, "records kept in memory (0 = unbounded)")
}

// resolveConfig layers the preset, the config file and explicit flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("density") {
		cfg.Density = density
	}
	if flags.Changed("rates") {
		p, err := parseRates(rates)
		if err != nil {
			return nil, err
		}
		cfg.Probabilities = p
	}
	if flags.Changed("settle") {
		cfg.Probabilities.Settle = settle
	}
	if flags.Changed("competition") {
		cfg.Probabilities.Competition = competition
	}
	if flags.Changed("mobility") {
		cfg.Probabilities.Mobility = mobility
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("save-interval") {
		cfg.SaveInterval = saveInterval
	}
	if flags.Changed("count-every") {
		cfg.CountEvery = countEvery
	}
	if flags.Changed("history-capacity") {
		cfg.HistoryCapacity = historyCapacity
	}
	switch {
	case flags.Changed("seed"):
		cfg.Seed = seed
	case cfg.Seed == 0:
		cfg.Seed = time.Now().UnixNano()
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseRates(s string) (rps.Probabilities, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return rps.Probabilities{}, fmt.Errorf("--rates wants three comma-separated values, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return rps.Probabilities{}, fmt.Errorf("--rates: %w", err)
		}
		v[i] = f
	}
	return config.FromRates(v[0], v[1], v[2])
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var st *storage.Store
	if !noStore {
		st = storage.New(cfg.DataDir)
	}

	fmt.Fprintf(out, "running %dx%d lattice for %d steps (seed %d)...\n", cfg.Width, cfg.Height, cfg.Steps, cfg.Seed)
	start := time.Now()

	outcome, runErr := automation.Execute(ctx, cfg, st, slog.Default())
	if outcome == nil || outcome.Result == nil {
		return runErr
	}

	if outcome.RunID != "" {
		fmt.Fprintf(out, "run id: %s\n", outcome.RunID)
		fmt.Fprintf(out, "snapshots: %d\n", outcome.Snapshots)
	}
	printResult(out, outcome.Result, time.Since(start))
	return runErr
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	switch {
	case cmd.Flags().Changed("seed"):
		scenario.Seed = seed
	case scenario.Seed == 0:
		scenario.Seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d runs\n", scenario.Name, len(scenario.Steps))

	outcomes, runErr := automation.RunScenario(ctx, scenario, storage.New(dataDir), slog.Default())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tRUN\tSTEPS\tROCK\tPAPER\tSCISSORS\tEMPTY\tENTROPY")
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		c := o.Result.FinalCounts
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.4f\n",
			o.Label, o.RunID, o.Result.FinalStep, c[rps.Rock], c[rps.Paper], c[rps.Scissors], c[rps.Empty], o.Result.Entropy)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func printResult(w io.Writer, result *sim.Result, elapsed time.Duration) {
	fmt.Fprintf(w, "completed %d steps in %v\n", result.Steps, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "final step: %d\n", result.FinalStep)
	c := result.FinalCounts
	fmt.Fprintf(w, "counts: rock=%d paper=%d scissors=%d empty=%d\n", c[rps.Rock], c[rps.Paper], c[rps.Scissors], c[rps.Empty])
	fmt.Fprintf(w, "entropy: %.6f\n", result.Entropy)
	fmt.Fprintf(w, "actions: settled=%d dominated=%d moved=%d failed_settles=%d\n",
		result.Actions.Settled, result.Actions.Dominated, result.Actions.Moved, result.Actions.FailedSettles)
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range metrics.Names() {
		if v, ok := result.Metrics[name]; ok {
			fmt.Fprintf(w, "  %s: %.6f\n", name, v)
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the viewer owns the terminal
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sim.New(cfg.Sim(), sim.WithLogger(quiet))
	if err != nil {
		return err
	}
	title := "rps"
	if preset != "" {
		title = preset
	}
	return viz.RunLive(s, title)
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(out, "  %-12s %dx%d density=%.2f settle=%.3f competition=%.3f mobility=%.3f steps=%d\n",
			name, p.Width, p.Height, p.Density,
			p.Probabilities.Settle, p.Probabilities.Competition, p.Probabilities.Mobility, p.Steps)
	}
	return nil
}
