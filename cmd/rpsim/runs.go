package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rpsim/internal/analysis"
	"github.com/san-kum/rpsim/internal/export"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
	"github.com/san-kum/rpsim/internal/storage"
	"github.com/san-kum/rpsim/internal/viz"
)

var (
	outPath      string
	renderFormat string
	renderScale  int
	renderDelay  int
	renderStep   int
)

// openRun returns the store and the run named in args, or the newest run.
func openRun(args []string) (*storage.Store, string, error) {
	st := storage.New(dataDir)
	if len(args) > 0 {
		return st, args[0], nil
	}
	id, err := st.Latest()
	if err != nil {
		return nil, "", fmt.Errorf("no run given and none stored in %s: %w", dataDir, err)
	}
	return st, id, nil
}

// output returns the --out file, or w when none was given.
func output(w io.Writer) (io.Writer, func() error, error) {
	if outPath == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tSTEPS\tSETTLE\tCOMPETE\tMOBILITY\tENTROPY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%.3f\t%.3f\t%.3f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Steps,
			run.Probabilities.Settle,
			run.Probabilities.Competition,
			run.Probabilities.Mobility,
			float64(run.Entropy),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("run %s has %d history records, need at least 2 to plot", runID, len(history))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "records: %d (steps %d..%d)\n\n", len(history), history[0].Step, history[len(history)-1].Step)

	graph := asciigraph.PlotMany(
		[][]float64{
			sim.Series(history, rps.Rock),
			sim.Series(history, rps.Paper),
			sim.Series(history, rps.Scissors),
		},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.SeriesLegends("rock", "paper", "scissors"),
		asciigraph.Caption("species counts"),
	)
	fmt.Fprintln(out, graph)

	entropy := finite(sim.EntropySeries(history))
	if len(entropy) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(entropy,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("entropy"),
		))
	}
	return nil
}

// finite drops infinite and NaN samples, which asciigraph cannot scale.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("run %s has no history", runID)
	}

	sum := analysis.Summarize(history)
	slog.Debug("run summary", "run_id", runID, "summary", sum)
	stride := 1
	if len(history) > 1 {
		stride = history[1].Step - history[0].Step
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s (%d records, every %d steps)\n\n", meta.ID, sum.Records, stride)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTDDEV\tMIN\tMAX\tFINAL\tPERIOD")
	row := func(name string, s analysis.SeriesStats) {
		period := "-"
		if s.Period > 0 {
			period = fmt.Sprintf("%.1f steps", s.Period*float64(stride))
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f\t%.0f\t%.2f\t%s\n", name, s.Mean, s.StdDev, s.Min, s.Max, s.Final, period)
	}
	for _, sp := range rps.Occupants {
		row(sp.String(), sum.Species[sp])
	}
	row("empty", sum.Empty)
	e := sum.Entropy
	fmt.Fprintf(w, "entropy\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t-\n", e.Mean, e.StdDev, e.Min, e.Max, e.Final)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(sum.Extinct) > 0 {
		names := make([]string, len(sum.Extinct))
		for i, sp := range sum.Extinct {
			names[i] = sp.String()
		}
		fmt.Fprintf(out, "\nextinct: %s\n", strings.Join(names, ", "))
	}

	spectrum := analysis.PowerSpectrum(sim.Series(history, rps.Rock))
	if len(spectrum) > 2 {
		// skip the DC bin
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(spectrum[1:],
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("rock power spectrum"),
		))
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	return viz.RunReplay(snaps, meta.Probabilities, runID)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	w, done, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(history, w); err != nil {
		done()
		return err
	}
	if err := done(); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", len(history), outPath)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := storage.ExportJSON(outPath, *meta, history); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", outPath)
		return nil
	}
	return storage.WriteJSON(cmd.OutOrStdout(), *meta, history)
}

func renderRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args)
	if err != nil {
		return err
	}

	format := renderFormat
	if !cmd.Flags().Changed("format") && outPath != "" {
		if ext := strings.TrimPrefix(filepath.Ext(outPath), "."); ext != "" {
			format = ext
		}
	}
	path := outPath
	if path == "" {
		path = runID + "." + format
		if format == "chart" {
			path = runID + "_chart.svg"
		}
	}

	if format == "chart" {
		history, err := st.LoadHistory(runID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(export.HistoryToSVG(history, 800, 400)), 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return export.ErrNoFrames
	}

	switch format {
	case "gif":
		err = export.WriteGIF(path, snaps, renderScale, renderDelay)
	case "png":
		err = export.WritePNG(path, pickSnapshot(snaps, renderStep).Grid, renderScale)
	case "svg":
		svg := export.GridToSVG(pickSnapshot(snaps, renderStep).Grid, float64(renderScale))
		err = os.WriteFile(path, []byte(svg), 0644)
	default:
		return fmt.Errorf("unknown format %q (svg, png, gif, chart)", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// pickSnapshot returns the snapshot at step, or the last one when step is
// negative or not stored.
func pickSnapshot(snaps []storage.Snapshot, step int) storage.Snapshot {
	if step >= 0 {
		for _, s := range snaps {
			if s.Step == step {
				return s
			}
		}
	}
	return snaps[len(snaps)-1]
}
