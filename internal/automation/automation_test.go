package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/storage"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const twoSteps = `
name: mobility
seed: 40
steps:
  - label: still
    preset: small
    config:
      width: 16
      height: 12
      steps: 6
      save_interval: 3
      probabilities:
        mobility: 0
  - preset: small
    config:
      width: 16
      height: 12
      steps: 4
      seed: 9
`

func TestLoadAndResolve(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, twoSteps))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "mobility" || len(sc.Steps) != 2 {
		t.Fatalf("loaded %+v", sc)
	}

	cfg, err := sc.Resolve(0)
	if err != nil {
		t.Fatal(err)
	}
	small := config.GetPreset("small")
	if cfg.Width != 16 || cfg.Height != 12 || cfg.Steps != 6 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Probabilities.Mobility != 0 {
		t.Errorf("mobility = %v, want 0", cfg.Probabilities.Mobility)
	}
	if cfg.Probabilities.Settle != small.Probabilities.Settle || cfg.Density != small.Density {
		t.Error("keys missing from the step should keep the preset values")
	}
	if cfg.Seed != 40 {
		t.Errorf("derived seed = %d, want 40", cfg.Seed)
	}

	cfg, err = sc.Resolve(1)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 9 {
		t.Errorf("explicit seed = %d, want 9", cfg.Seed)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("scenario without steps should fail")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [")); err == nil {
		t.Error("malformed yaml should fail")
	}

	sc, err := LoadScenario(writeScenario(t, "steps:\n  - preset: nope\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Resolve(0); err == nil {
		t.Error("unknown preset should fail")
	}

	sc, err = LoadScenario(writeScenario(t, "steps:\n  - config:\n      density: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Resolve(0); !errors.Is(err, rps.ErrDensityBounds) {
		t.Errorf("Resolve() error = %v, want ErrDensityBounds", err)
	}
}

func TestExecuteStoresRun(t *testing.T) {
	cfg := config.GetPreset("small")
	cfg.Width, cfg.Height = 10, 8
	cfg.Steps = 9
	cfg.SaveInterval = 3
	cfg.Seed = 5

	st := storage.New(t.TempDir())
	out, err := Execute(context.Background(), cfg, st, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if out.RunID == "" {
		t.Fatal("stored run has no id")
	}
	// steps 0, 3, 6 and 9
	if out.Snapshots != 4 {
		t.Errorf("snapshots = %d, want 4", out.Snapshots)
	}

	meta, err := st.Load(out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Steps != 9 || meta.Seed != 5 {
		t.Errorf("metadata steps=%d seed=%d", meta.Steps, meta.Seed)
	}
	if _, ok := meta.Metrics["coexistence"]; !ok {
		t.Errorf("standard metrics missing: %v", meta.Metrics)
	}

	history, err := st.LoadHistory(out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	// seed record plus one per step
	if len(history) != 10 {
		t.Errorf("history has %d records, want 10", len(history))
	}

	if _, err := os.Stat(filepath.Join(st.Dir(), out.RunID, "config.yaml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestExecuteWithoutStore(t *testing.T) {
	cfg := config.GetPreset("small")
	cfg.Width, cfg.Height, cfg.Steps, cfg.Seed = 8, 8, 3, 1

	out, err := Execute(context.Background(), cfg, nil, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if out.RunID != "" || out.Result.FinalStep != 3 {
		t.Errorf("outcome %+v", out)
	}
}

func TestExecuteFailureLeavesNoRunDir(t *testing.T) {
	st := storage.New(t.TempDir())

	bad := config.GetPreset("small")
	bad.Density = 3
	if _, err := Execute(context.Background(), bad, st, quiet()); !errors.Is(err, rps.ErrDensityBounds) {
		t.Fatalf("Execute() error = %v, want ErrDensityBounds", err)
	}

	negative := config.GetPreset("small")
	negative.Width, negative.Height, negative.Steps = 8, 8, -1
	if _, err := Execute(context.Background(), negative, st, quiet()); err == nil {
		t.Fatal("negative step count should fail")
	}

	entries, err := os.ReadDir(st.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed runs left %d directories behind", len(entries))
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, twoSteps))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())

	outcomes, err := RunScenario(context.Background(), sc, st, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Label != "still" || outcomes[1].Label != "step2" {
		t.Errorf("labels %q, %q", outcomes[0].Label, outcomes[1].Label)
	}
	if outcomes[0].Result.Actions.Moved != 0 {
		t.Errorf("mobility 0 run moved %d cells", outcomes[0].Result.Actions.Moved)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("stored %d runs, want 2", len(runs))
	}
}
