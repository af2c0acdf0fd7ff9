// Package plot renders simulation feeds as terminal line charts.
package plot

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorsim/internal/engine"
)

const (
	DefaultHeight = 12
	DefaultWidth  = 80
)

// NoData is returned when nothing finite is left to draw.
const NoData = "(no finite data)"

type Options struct {
	// Log plots log10 of the values; non-positive values are dropped.
	Log     bool
	Height  int
	Width   int
	Caption string
}

// Power charts relative power over the run.
func Power(f engine.Feed, opts Options) string {
	if opts.Caption == "" {
		opts.Caption = "power (relative)"
		if opts.Log {
			opts.Caption = "log10 power (relative)"
		}
	}
	return Render(f.Power, opts)
}

// Dollars charts reactivity in dollars. The axis is always linear.
func Dollars(f engine.Feed, opts Options) string {
	opts.Log = false
	if opts.Caption == "" {
		opts.Caption = "reactivity ($)"
	}
	return Render(f.Dollars, opts)
}

// Render draws values with asciigraph after dropping non-finite points.
func Render(values []float64, opts Options) string {
	data := Finite(values, opts.Log)
	if len(data) == 0 {
		return NoData
	}

	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Caption(opts.Caption),
	}
	// asciigraph interpolates to the width, which needs two points
	if len(data) > 1 {
		w := opts.Width
		if w <= 0 {
			w = DefaultWidth
		}
		graphOpts = append(graphOpts, asciigraph.Width(w))
	}
	return asciigraph.Plot(data, graphOpts...)
}

// Finite returns the plottable subset of values, in log10 when log is set.
func Finite(values []float64, log bool) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if log {
			if v <= 0 {
				continue
			}
			v = math.Log10(v)
		}
		out = append(out, v)
	}
	return out
}
