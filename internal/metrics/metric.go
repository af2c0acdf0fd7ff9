package metrics

import "github.com/san-kum/reactorsim/internal/engine"

// Metric folds a stream of samples into one number.
type Metric interface {
	Name() string
	Observe(s engine.Sample)
	Value() float64
	Reset()
}

// ObserveAll feeds samples to every metric in order.
func ObserveAll(samples []engine.Sample, ms ...Metric) {
	for _, s := range samples {
		for _, m := range ms {
			m.Observe(s)
		}
	}
}
