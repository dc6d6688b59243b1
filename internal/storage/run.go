package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

// Run is an open run directory. Writers obtained from it are closed by
// Close.
type Run struct {
	ID  string
	dir string
	now func() time.Time

	history   *HistoryWriter
	snapshots *SnapshotWriter
}

func (r *Run) Dir() string { return r.dir }

func (r *Run) WriteConfig(cfg *config.Config) error {
	return config.Save(filepath.Join(r.dir, configFile), cfg)
}

// History opens history.csv for streaming appends.
func (r *Run) History() (*HistoryWriter, error) {
	if r.history != nil {
		return r.history, nil
	}
	f, err := os.Create(filepath.Join(r.dir, historyFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", historyFile, err)
	}
	r.history = &HistoryWriter{file: f}
	return r.history, nil
}

// Snapshots opens snapshots.bin. The writer saves a snapshot on every step
// divisible by interval.
func (r *Run) Snapshots(width, height, interval int, log *slog.Logger) (*SnapshotWriter, error) {
	if r.snapshots != nil {
		return r.snapshots, nil
	}
	if interval <= 0 {
		return nil, fmt.Errorf("snapshot interval must be positive, got %d", interval)
	}
	if log == nil {
		log = slog.Default()
	}
	f, err := os.Create(filepath.Join(r.dir, snapshotsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", snapshotsFile, err)
	}
	bw := bufio.NewWriter(f)
	enc, err := NewSnapshotEncoder(bw, width, height)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.snapshots = &SnapshotWriter{file: f, buf: bw, enc: enc, interval: interval, log: log}
	return r.snapshots, nil
}

// Finish writes metadata.json and closes the open writers.
func (r *Run) Finish(meta RunMetadata) error {
	meta.ID = r.ID
	meta.Timestamp = r.now()

	closeErr := r.Close()

	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return closeErr
}

func (r *Run) Close() error {
	var errs []error
	if r.history != nil {
		errs = append(errs, r.history.Close())
	}
	if r.snapshots != nil {
		errs = append(errs, r.snapshots.Close())
	}
	return errors.Join(errs...)
}

// Discard closes the writers and removes the run directory. It is used
// when a run fails before it produced anything worth keeping.
func (r *Run) Discard() error {
	closeErr := r.Close()
	return errors.Join(closeErr, os.RemoveAll(r.dir))
}

// HistoryWriter streams records to history.csv. It implements
// sim.HistorySink.
type HistoryWriter struct {
	file          *os.File
	headerWritten bool
}

func (h *HistoryWriter) Append(r sim.Record) error {
	records := []sim.Record{r}

	if !h.headerWritten {
		if err := gocsv.Marshal(records, h.file); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
		h.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, h.file); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

func (h *HistoryWriter) Close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

// SnapshotWriter is a sim.Observer that appends the grid to snapshots.bin
// every interval steps. The first write error is logged and the writer
// disables itself; the simulation is never interrupted.
type SnapshotWriter struct {
	file     *os.File
	buf      *bufio.Writer
	enc      *SnapshotEncoder
	interval int
	log      *slog.Logger

	written int
	err     error
}

func (w *SnapshotWriter) OnStep(step int, g *rps.Grid) {
	if step%w.interval != 0 {
		return
	}
	w.Save(step, g)
}

// Save writes g regardless of the interval.
func (w *SnapshotWriter) Save(step int, g *rps.Grid) {
	if w.err != nil || w.enc == nil {
		return
	}
	if err := w.enc.Encode(step, g); err != nil {
		w.err = err
		w.log.Error("snapshot writer disabled", "step", step, "error", err)
		return
	}
	w.written++
}

// Written returns the number of snapshots saved so far.
func (w *SnapshotWriter) Written() int { return w.written }

// Err returns the error that disabled the writer, if any.
func (w *SnapshotWriter) Err() error { return w.err }

func (w *SnapshotWriter) Close() error {
	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil
	w.enc = nil
	return errors.Join(flushErr, closeErr)
}
