package sim

import "github.com/san-kum/rpsim/internal/rps"

// Record is one row of the population history.
type Record struct {
	Step     int     `csv:"step" json:"step"`
	Rock     int     `csv:"rock" json:"rock"`
	Paper    int     `csv:"paper" json:"paper"`
	Scissors int     `csv:"scissors" json:"scissors"`
	Empty    int     `csv:"empty" json:"empty"`
	Entropy  float64 `csv:"entropy" json:"entropy"`
}

func NewRecord(step int, c rps.Counts, entropy float64) Record {
	return Record{
		Step:     step,
		Rock:     c[rps.Rock],
		Paper:    c[rps.Paper],
		Scissors: c[rps.Scissors],
		Empty:    c[rps.Empty],
		Entropy:  entropy,
	}
}

func (r Record) Counts() rps.Counts {
	var c rps.Counts
	c[rps.Empty] = r.Empty
	c[rps.Rock] = r.Rock
	c[rps.Paper] = r.Paper
	c[rps.Scissors] = r.Scissors
	return c
}

// History is an append-only record list. With a positive capacity it keeps
// only the most recent records.
type History struct {
	capacity int
	buf      []Record
	start    int
	dropped  int
}

func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{capacity: capacity}
}

func (h *History) Append(r Record) {
	if h.capacity > 0 && len(h.buf) == h.capacity {
		h.buf[h.start] = r
		h.start = (h.start + 1) % h.capacity
		h.dropped++
		return
	}
	h.buf = append(h.buf, r)
}

func (h *History) Len() int { return len(h.buf) }

// Dropped returns how many records were evicted by the capacity bound.
func (h *History) Dropped() int { return h.dropped }

// Records returns a copy of the retained records, oldest first.
func (h *History) Records() []Record {
	out := make([]Record, len(h.buf))
	n := copy(out, h.buf[h.start:])
	copy(out[n:], h.buf[:h.start])
	return out
}

func (h *History) Last() (Record, bool) {
	if len(h.buf) == 0 {
		return Record{}, false
	}
	i := h.start - 1
	if i < 0 {
		i = len(h.buf) - 1
	}
	return h.buf[i], true
}

func (h *History) Reset() {
	h.buf = h.buf[:0]
	h.start = 0
	h.dropped = 0
}

// Series extracts the population of s from each record.
func Series(records []Record, s rps.Species) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.Counts()[s])
	}
	return out
}

// EntropySeries extracts the entropy column.
func EntropySeries(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Entropy
	}
	return out
}
