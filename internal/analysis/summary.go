package analysis

import (
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

// SeriesStats describes one population or entropy series.
type SeriesStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Final  float64
	Period float64
}

func (s SeriesStats) LogValue() slog.Value {
	return slog.GroupValue(
		number("mean", s.Mean),
		number("std_dev", s.StdDev),
		number("min", s.Min),
		number("max", s.Max),
		number("final", s.Final),
		number("period", s.Period),
	)
}

// number keeps infinite values readable in JSON logs, which cannot carry
// them as numbers.
func number(key string, v float64) slog.Attr {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return slog.String(key, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return slog.Float64(key, v)
}

type Summary struct {
	Records int
	Species map[rps.Species]SeriesStats
	Empty   SeriesStats
	Entropy SeriesStats
	// Extinct lists the species absent from the last record.
	Extinct []rps.Species
}

// LogValue groups the series by species name.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Int("records", s.Records)}
	for _, sp := range rps.Occupants {
		if st, ok := s.Species[sp]; ok {
			attrs = append(attrs, slog.Any(sp.String(), st))
		}
	}
	attrs = append(attrs, slog.Any("empty", s.Empty), slog.Any("entropy", s.Entropy))
	if len(s.Extinct) > 0 {
		names := make([]string, len(s.Extinct))
		for i, sp := range s.Extinct {
			names[i] = sp.String()
		}
		attrs = append(attrs, slog.Any("extinct", names))
	}
	return slog.GroupValue(attrs...)
}

// Summarize computes statistics of every column of history. Periods are in
// records, so they must be multiplied by the count interval to get steps.
// Non-finite entropy samples are ignored.
func Summarize(history []sim.Record) Summary {
	s := Summary{
		Records: len(history),
		Species: make(map[rps.Species]SeriesStats, len(rps.Occupants)),
	}
	if len(history) == 0 {
		return s
	}

	for _, sp := range rps.Occupants {
		st := describe(sim.Series(history, sp))
		s.Species[sp] = st
		if st.Final == 0 {
			s.Extinct = append(s.Extinct, sp)
		}
	}
	s.Empty = describe(sim.Series(history, rps.Empty))

	var finite []float64
	for _, v := range sim.EntropySeries(history) {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) > 0 {
		s.Entropy = describe(finite)
	}
	s.Entropy.Final = history[len(history)-1].Entropy
	return s
}

func describe(x []float64) SeriesStats {
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		std = 0
	}
	period, _ := DominantPeriod(x)
	return SeriesStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Final:  x[len(x)-1],
		Period: period,
	}
}
