package metrics

import "github.com/san-kum/rpsim/internal/rps"

// Occupancy is the mean fraction of non-empty cells.
type Occupancy struct {
	name    string
	sum     float64
	samples int
}

func NewOccupancy() *Occupancy {
	return &Occupancy{name: "occupancy"}
}

func (o *Occupancy) Name() string {
	return o.name
}

func (o *Occupancy) Observe(step int, g *rps.Grid, stats rps.StepStats) {
	c := g.Counts()
	o.sum += float64(c.Occupied()) / float64(c.Total())
	o.samples++
}

func (o *Occupancy) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return o.sum / float64(o.samples)
}

func (o *Occupancy) Reset() {
	o.sum = 0
	o.samples = 0
}

// Coexistence is the fraction of observed steps on which all three species
// were present. It also remembers the first step on which one went extinct.
type Coexistence struct {
	name       string
	coexisting int
	samples    int
	extinction int
}

func NewCoexistence() *Coexistence {
	return &Coexistence{name: "coexistence"}
}

func (c *Coexistence) Name() string {
	return c.name
}

func (c *Coexistence) Observe(step int, g *rps.Grid, stats rps.StepStats) {
	c.samples++
	if g.Counts().Surviving() == len(rps.Occupants) {
		c.coexisting++
		return
	}
	if c.extinction == 0 {
		c.extinction = step
	}
}

func (c *Coexistence) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return float64(c.coexisting) / float64(c.samples)
}

// FirstExtinction returns the first step with fewer than three species, or
// zero if every observed step had all three.
func (c *Coexistence) FirstExtinction() int { return c.extinction }

func (c *Coexistence) Reset() {
	c.coexisting = 0
	c.samples = 0
	c.extinction = 0
}
