package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool
)

// main registers the commands and launches the preset browser when no
// subcommand is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "rpsim",
		Short:         "spatial rock-paper-scissors lattice lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its history and snapshots",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not write a run directory")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of several stored runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().Int64Var(&seed, "seed", 0, "base seed (default: from file, else time based)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot species counts of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "population statistics and oscillation periods",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play back stored snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the run history as CSV to stdout or --out",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run metadata and history as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render snapshots as svg, png or an animated gif",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (extension picks the format)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "gif", "svg, png, gif or chart")
	renderCmd.Flags().IntVar(&renderScale, "scale", 2, "pixels per cell")
	renderCmd.Flags().IntVar(&renderDelay, "delay", 5, "gif frame delay in 1/100 s")
	renderCmd.Flags().IntVar(&renderStep, "step", -1, "snapshot step for svg/png (default last)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the transition and entropy kernels",
		Args:  cobra.NoArgs,
		RunE:  benchSim,
	}
	addSimFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over the probabilities for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "coexistence", "metric to score")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "maximize", true, "maximize instead of minimize")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 3, "values per probability axis")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 2, "replicates per cell")
	sweepCmd.Flags().IntVar(&sweepRefine, "refine", 0, "Nelder-Mead evaluations after the grid")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "browse presets and launch the live viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.AddCommand(runCmd, scenarioCmd, liveCmd, listCmd, plotCmd, analyzeCmd, replayCmd, exportCSVCmd,
		exportJSONCmd, renderCmd, presetsCmd, benchCmd, sweepCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if logJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
