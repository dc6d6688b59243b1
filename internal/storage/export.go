package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/rpsim/internal/sim"
)

// Float is a float64 that survives JSON: non-finite values are written as
// the strings "+Inf", "-Inf" and "NaN".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = Float(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func floats(m map[string]float64) map[string]Float {
	out := make(map[string]Float, len(m))
	for k, v := range m {
		out[k] = Float(v)
	}
	return out
}

type exportRecord struct {
	Step     int   `json:"step"`
	Rock     int   `json:"rock"`
	Paper    int   `json:"paper"`
	Scissors int   `json:"scissors"`
	Empty    int   `json:"empty"`
	Entropy  Float `json:"entropy"`
}

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	History []exportRecord `json:"history"`
}

func newExportData(meta RunMetadata, history []sim.Record) ExportData {
	data := ExportData{Run: meta, History: make([]exportRecord, len(history))}
	for i, r := range history {
		data.History[i] = exportRecord{
			Step:     r.Step,
			Rock:     r.Rock,
			Paper:    r.Paper,
			Scissors: r.Scissors,
			Empty:    r.Empty,
			Entropy:  Float(r.Entropy),
		}
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, history []sim.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, history)
}

func WriteJSON(w io.Writer, meta RunMetadata, history []sim.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, history))
}
