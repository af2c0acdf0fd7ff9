package metrics

import "github.com/san-kum/reactorsim/internal/engine"

// Excursion measures how long power spends above a trip threshold.
type Excursion struct {
	threshold float64
	dt        float64
	over      int
	samples   int
	first     float64
}

func NewExcursion(threshold, dt float64) *Excursion {
	return &Excursion{threshold: threshold, dt: dt, first: -1}
}

func (e *Excursion) Name() string { return "excursion" }

// Observe counts s as over the threshold when its power exceeds it. NaN
// power is never over.
func (e *Excursion) Observe(s engine.Sample) {
	e.samples++
	if s.Power > e.threshold {
		if e.over == 0 {
			e.first = s.Time
		}
		e.over++
	}
}

// Value is the simulated time spent above the threshold.
func (e *Excursion) Value() float64 {
	return float64(e.over) * e.dt
}

// Fraction is the share of samples above the threshold.
func (e *Excursion) Fraction() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.over) / float64(e.samples)
}

// FirstTrip is the time of the first sample over the threshold, or -1.
func (e *Excursion) FirstTrip() float64 { return e.first }

func (e *Excursion) Reset() {
	e.over, e.samples, e.first = 0, 0, -1
}
