package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	historyFile   = "history.csv"
	snapshotsFile = "snapshots.bin"
	configFile    = "config.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Seed          int64             `json:"seed"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Density       float64           `json:"density"`
	Probabilities rps.Probabilities `json:"probabilities"`
	Steps         int               `json:"steps"`
	SaveInterval  int               `json:"save_interval"`
	CountEvery    int               `json:"count_every"`
	FinalCounts   map[string]int    `json:"final_counts"`
	Entropy       Float             `json:"entropy"`
	Actions       rps.StepStats     `json:"actions"`
	Metrics       map[string]Float  `json:"metrics"`
}

// NewMetadata describes a finished run.
func NewMetadata(cfg sim.Config, saveInterval int, result *sim.Result) RunMetadata {
	counts := make(map[string]int, rps.NumStates)
	for s := rps.Empty; s <= rps.Scissors; s++ {
		counts[s.String()] = result.FinalCounts[s]
	}
	return RunMetadata{
		Seed:          cfg.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Density:       cfg.Density,
		Probabilities: cfg.Probabilities,
		Steps:         result.FinalStep,
		SaveInterval:  saveInterval,
		CountEvery:    cfg.CountEvery,
		FinalCounts:   counts,
		Entropy:       Float(result.Entropy),
		Actions:       result.Actions,
		Metrics:       floats(result.Metrics),
	}
}

// Create makes a fresh run directory. The id is derived from the lattice
// size and the current time, with a numeric suffix on collision.
func (s *Store) Create(width, height int) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	base := fmt.Sprintf("rps_%dx%d_%d", width, height, s.now().Unix())
	id := base
	for i := 1; ; i++ {
		err := os.Mkdir(filepath.Join(s.baseDir, id), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
	return &Run{ID: id, dir: filepath.Join(s.baseDir, id), now: s.now}, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the id of the most recent finished run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, runID, name)
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s metadata: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadHistory(runID string) ([]sim.Record, error) {
	file, err := os.Open(s.path(runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		return []sim.Record{}, nil
	}

	records := []sim.Record{}
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []sim.Record{}, nil
		}
		return nil, fmt.Errorf("parse %s history: %w", runID, err)
	}
	return records, nil
}

func (s *Store) LoadSnapshots(runID string) ([]Snapshot, error) {
	file, err := os.Open(s.path(runID, snapshotsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	snaps, err := ReadSnapshots(file)
	if err != nil {
		return nil, fmt.Errorf("read %s snapshots: %w", runID, err)
	}
	return snaps, nil
}
