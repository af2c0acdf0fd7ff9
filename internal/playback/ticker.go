package playback

import (
	"context"
	"time"
)

// DefaultFPS is the frame rate of the wall-clock ticker.
const DefaultFPS = 60

// Ticker schedules calls to tick. Run returns when tick reports false (nil
// error) or when ctx is done (ctx.Err()).
type Ticker interface {
	Run(ctx context.Context, tick func(elapsed time.Duration) bool) error
}

// WallClock ticks on a real-time clock and reports the wall time elapsed
// since the previous tick.
type WallClock struct {
	Interval time.Duration
}

func NewWallClock(fps int) *WallClock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &WallClock{Interval: time.Second / time.Duration(fps)}
}

func (w *WallClock) Run(ctx context.Context, tick func(elapsed time.Duration) bool) error {
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			elapsed := now.Sub(last)
			last = now
			if !tick(elapsed) {
				return nil
			}
		}
	}
}

// Immediate ticks back to back without sleeping. Each tick reports Elapsed;
// the zero value reports an hour, enough to make every tick a step.
type Immediate struct {
	Elapsed time.Duration
}

func (i Immediate) Run(ctx context.Context, tick func(elapsed time.Duration) bool) error {
	elapsed := i.Elapsed
	if elapsed <= 0 {
		elapsed = time.Hour
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !tick(elapsed) {
			return nil
		}
	}
}
