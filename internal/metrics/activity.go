package metrics

import "github.com/san-kum/rpsim/internal/rps"

// Activity is the mean number of applied actions per cell per step.
// Failed settlements do not count.
type Activity struct {
	name    string
	sum     float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{
		name: "activity",
	}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Observe(step int, g *rps.Grid, stats rps.StepStats) {
	actions := stats.Settled + stats.Dominated + stats.Moved
	a.sum += float64(actions) / float64(g.Len())
	a.samples++
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Activity) Reset() {
	a.sum = 0
	a.samples = 0
}
