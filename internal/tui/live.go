// Package tui prints headless playback progress to a plain terminal.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/metrics"
)

const barWidth = 24

// LiveRenderer rewrites a single status line at most frameRate times per
// second.
type LiveRenderer struct {
	w         io.Writer
	total     float64
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	period    *metrics.Period
}

func NewLiveRenderer(w io.Writer, total float64, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &LiveRenderer{
		w:         w,
		total:     total,
		frameRate: frameRate,
		now:       time.Now,
		period:    metrics.NewPeriod(),
	}
}

// OnStep matches playback.Options.OnStep.
func (r *LiveRenderer) OnStep(s engine.Sample) {
	r.period.Observe(s)
	now := r.now()
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now
	fmt.Fprint(r.w, "\r"+r.line(s))
}

// Finish prints the final status and ends the line.
func (r *LiveRenderer) Finish(s engine.Sample) {
	fmt.Fprintln(r.w, "\r"+r.line(s))
}

func (r *LiveRenderer) line(s engine.Sample) string {
	frac := 1.0
	if r.total > 0 {
		frac = min(max(s.Time/r.total, 0), 1)
	}
	filled := int(frac * barWidth)
	bar := strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled)

	flag := ""
	if s.ReactivityDollars >= 1 {
		flag = " PROMPT CRITICAL"
	}
	period := "-"
	if v := r.period.Value(); !math.IsNaN(v) && !math.IsInf(v, 0) {
		period = fmt.Sprintf("%.3gs", v)
	}
	return fmt.Sprintf("[%s] t=%7.2fs  P=%-11.4g  rho=%+.3f$  T=%-8s%s", bar, s.Time, s.Power, s.ReactivityDollars, period, flag)
}
