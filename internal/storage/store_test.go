package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGrid(t *testing.T, w, h int, seed uint64) *rps.Grid {
	t.Helper()
	g, err := rps.Seed(w, h, 0.6, newRand(seed))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStoreRunRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run, err := st.Create(6, 4)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if run.ID == "" {
		t.Error("expected non-empty run id")
	}

	hw, err := run.History()
	if err != nil {
		t.Fatal(err)
	}
	records := []sim.Record{
		{Step: 0, Rock: 3, Paper: 4, Scissors: 5, Empty: 12, Entropy: 0.5},
		{Step: 5, Rock: 2, Paper: 6, Scissors: 4, Empty: 12, Entropy: 0.25},
		{Step: 10, Rock: 0, Paper: 8, Scissors: 0, Empty: 16, Entropy: math.Inf(1)},
	}
	for _, r := range records {
		if err := hw.Append(r); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	sw, err := run.Snapshots(6, 4, 5, quiet())
	if err != nil {
		t.Fatal(err)
	}
	grids := []*rps.Grid{testGrid(t, 6, 4, 1), testGrid(t, 6, 4, 2), testGrid(t, 6, 4, 3)}
	sw.Save(0, grids[0])
	sw.OnStep(3, grids[1])
	sw.OnStep(5, grids[1])
	sw.OnStep(10, grids[2])
	if sw.Written() != 3 {
		t.Errorf("expected 3 snapshots, got %d", sw.Written())
	}

	cfg := sim.Config{
		Width: 6, Height: 4, Density: 0.6, Seed: 42, CountEvery: 5,
		Probabilities: rps.Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25},
	}
	result := &sim.Result{
		Steps:       10,
		FinalStep:   10,
		FinalCounts: rps.Counts{16, 0, 8, 0},
		Entropy:     math.Inf(1),
		Metrics:     map[string]float64{"occupancy": 0.5},
	}
	if err := run.Finish(NewMetadata(cfg, 5, result)); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != run.ID || meta.Seed != 42 || meta.Steps != 10 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.FinalCounts["paper"] != 8 || meta.FinalCounts["empty"] != 16 {
		t.Errorf("unexpected final counts %v", meta.FinalCounts)
	}
	if !math.IsInf(float64(meta.Entropy), 1) {
		t.Errorf("expected +Inf entropy to survive JSON, got %v", meta.Entropy)
	}
	if meta.Metrics["occupancy"] != 0.5 {
		t.Errorf("expected occupancy 0.5, got %v", meta.Metrics["occupancy"])
	}

	history, err := st.LoadHistory(run.ID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(history))
	}
	for i := range records {
		if history[i] != records[i] {
			t.Errorf("record %d: got %+v, want %+v", i, history[i], records[i])
		}
	}

	snaps, err := st.LoadSnapshots(run.ID)
	if err != nil {
		t.Fatalf("load snapshots failed: %v", err)
	}
	wantSteps := []int{0, 5, 10}
	wantGrids := []*rps.Grid{grids[0], grids[1], grids[2]}
	if len(snaps) != len(wantSteps) {
		t.Fatalf("expected %d snapshots, got %d", len(wantSteps), len(snaps))
	}
	for i, s := range snaps {
		if s.Step != wantSteps[i] || !s.Grid.Equal(wantGrids[i]) {
			t.Errorf("snapshot %d: step %d, grid match %v", i, s.Step, s.Grid.Equal(wantGrids[i]))
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
	if _, err := st.Latest(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Latest() on empty store = %v, want ErrRunNotFound", err)
	}

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return clock }

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := st.Create(8, 8)
		if err != nil {
			t.Fatal(err)
		}
		if err := run.Finish(RunMetadata{Seed: int64(i)}); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, run.ID)
		clock = clock.Add(time.Second)
	}

	// an unfinished run has no metadata and is skipped
	if _, err := st.Create(8, 8); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, r := range runs {
		if r.ID != ids[i] {
			t.Errorf("run %d: got %s, want %s", i, r.ID, ids[i])
		}
	}

	latest, err := st.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != ids[2] {
		t.Errorf("Latest() = %s, want %s", latest, ids[2])
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	st.now = func() time.Time { return time.Unix(1700000000, 0) }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		run, err := st.Create(4, 4)
		if err != nil {
			t.Fatal(err)
		}
		if seen[run.ID] {
			t.Errorf("duplicate run id %s", run.ID)
		}
		seen[run.ID] = true
	}
}

func TestRunDiscard(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := run.History(); err != nil {
		t.Fatal(err)
	}
	if _, err := run.Snapshots(4, 4, 1, nil); err != nil {
		t.Fatal(err)
	}

	if err := run.Discard(); err != nil {
		t.Fatalf("Discard() = %v", err)
	}
	if _, err := os.Stat(run.Dir()); !os.IsNotExist(err) {
		t.Errorf("run directory still present: %v", err)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() = %v, want ErrRunNotFound", err)
	}
}

func TestLoadHistoryEmpty(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := run.History(); err != nil {
		t.Fatal(err)
	}
	if err := run.Close(); err != nil {
		t.Fatal(err)
	}

	history, err := st.LoadHistory(run.ID)
	if err != nil {
		t.Fatalf("empty history should load, got %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no records, got %d", len(history))
	}
}

func TestRunWriteConfig(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(4, 4)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 1234
	if err := run.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(filepath.Join(run.Dir(), configFile))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", loaded.Seed)
	}
}

func TestSnapshotWriterDisablesOnError(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	sw, err := run.Snapshots(4, 4, 1, quiet())
	if err != nil {
		t.Fatal(err)
	}

	sw.OnStep(1, testGrid(t, 5, 5, 1))
	if !errors.Is(sw.Err(), ErrSnapshotDimension) {
		t.Fatalf("Err() = %v, want ErrSnapshotDimension", sw.Err())
	}
	sw.OnStep(2, testGrid(t, 4, 4, 1))
	if sw.Written() != 0 {
		t.Errorf("disabled writer saved %d snapshots", sw.Written())
	}
	if err := run.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestSnapshotWriterObservesSimulation(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	sw, err := run.Snapshots(8, 8, 4, quiet())
	if err != nil {
		t.Fatal(err)
	}
	hw, err := run.History()
	if err != nil {
		t.Fatal(err)
	}

	cfg := sim.Config{
		Width: 8, Height: 8, Density: 0.5, Seed: 3, CountEvery: 2, RecordSeed: true,
		Probabilities: rps.Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25},
	}
	s, err := sim.New(cfg, sim.WithLogger(quiet()), sim.WithObserver(sw), sim.WithHistorySink(hw))
	if err != nil {
		t.Fatal(err)
	}
	sw.Save(0, s.Grid())
	result, err := s.Run(t.Context(), 12)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(NewMetadata(cfg, 4, result)); err != nil {
		t.Fatal(err)
	}

	snaps, err := st.LoadSnapshots(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 4 {
		t.Fatalf("expected snapshots at 0,4,8,12, got %d", len(snaps))
	}
	if !snaps[3].Grid.Equal(s.Grid()) {
		t.Error("last snapshot differs from final grid")
	}

	history, err := st.LoadHistory(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != len(result.History) {
		t.Fatalf("streamed %d records, simulator kept %d", len(history), len(result.History))
	}
	for i := range history {
		if history[i] != result.History[i] {
			t.Errorf("record %d: file %+v, memory %+v", i, history[i], result.History[i])
		}
	}
}

func TestFloatJSON(t *testing.T) {
	tests := []Float{0, 1.5, -2.25, Float(math.Inf(1)), Float(math.Inf(-1))}
	for _, f := range tests {
		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal %v: %v", f, err)
		}
		var back Float
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != f {
			t.Errorf("%v round-tripped to %v", f, back)
		}
	}

	data, _ := json.Marshal(Float(math.NaN()))
	var back Float
	if err := json.Unmarshal(data, &back); err != nil || !math.IsNaN(float64(back)) {
		t.Errorf("NaN round trip: %s -> %v, %v", data, back, err)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	meta := RunMetadata{ID: "rps_test", Width: 2, Height: 2, Entropy: Float(math.Inf(1))}
	history := []sim.Record{{Step: 0, Rock: 1, Paper: 1, Scissors: 1, Empty: 1, Entropy: 0.75}}

	if err := ExportJSON(path, meta, history); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Run     RunMetadata `json:"run"`
		History []struct {
			Step    int   `json:"step"`
			Rock    int   `json:"rock"`
			Entropy Float `json:"entropy"`
		} `json:"history"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported JSON invalid: %v", err)
	}
	if decoded.Run.ID != "rps_test" || len(decoded.History) != 1 || decoded.History[0].Entropy != 0.75 {
		t.Errorf("unexpected export %+v", decoded)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, meta, nil); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Error("WriteJSON produced invalid JSON")
	}
}
