package playback

import "time"

// Pacer accumulates wall-clock time and releases one step whenever a full
// step interval has built up. Backlog beyond one pending step is dropped so a
// stalled UI does not replay a burst of steps afterwards.
type Pacer struct {
	interval time.Duration
	acc      time.Duration
}

// NewPacer releases a step of dt simulated seconds every
// dt*wallPerSim wall seconds. Non-positive wallPerSim means real time.
func NewPacer(dt, wallPerSim float64) *Pacer {
	if wallPerSim <= 0 {
		wallPerSim = 1
	}
	interval := time.Duration(dt * wallPerSim * float64(time.Second))
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return &Pacer{interval: interval}
}

func (p *Pacer) Interval() time.Duration { return p.interval }

// Tick adds elapsed and reports whether a step is due.
func (p *Pacer) Tick(elapsed time.Duration) bool {
	if elapsed > 0 {
		p.acc += elapsed
	}
	if p.acc < p.interval {
		return false
	}
	p.acc -= p.interval
	if p.acc > p.interval {
		p.acc = p.interval
	}
	return true
}

func (p *Pacer) Reset() { p.acc = 0 }
