package metrics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/engine"
)

// Period tracks the instantaneous reactor period, the e-folding time of
// power between the last two samples. Positive means rising power.
type Period struct {
	prev, cur engine.Sample
	n         int
}

func NewPeriod() *Period { return &Period{} }

func (p *Period) Name() string { return "period" }

func (p *Period) Observe(s engine.Sample) {
	p.prev, p.cur = p.cur, s
	p.n++
}

// Value is +Inf for flat power and NaN before two samples or when either
// power is not finite and positive.
func (p *Period) Value() float64 {
	if p.n < 2 {
		return math.NaN()
	}
	return ReactorPeriod(p.prev, p.cur)
}

func (p *Period) Reset() { *p = Period{} }

func ReactorPeriod(prev, cur engine.Sample) float64 {
	if !valid(prev.Power) || !valid(cur.Power) {
		return math.NaN()
	}
	r := math.Log(cur.Power / prev.Power)
	if r == 0 {
		return math.Inf(1)
	}
	return (cur.Time - prev.Time) / r
}

// StartupRate converts a period to decades per minute.
func StartupRate(period float64) float64 {
	return 60 / (math.Ln10 * period)
}

func valid(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
