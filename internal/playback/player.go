package playback

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/logging"
)

var ErrPlaying = errors.New("playback: already playing")

type Options struct {
	// WallSecondsPerSimSecond scales pacing; 1 is real time.
	WallSecondsPerSimSecond float64
	Engine                  []engine.Option
	Logger                  *slog.Logger
	// OnStep is called after every paced step, outside the player's lock.
	// It must not call Pause or Seek.
	OnStep func(engine.Sample)
}

// Player owns one simulation and paces it. All methods are safe for
// concurrent use.
type Player struct {
	mu     sync.Mutex
	opts   Options
	sim    *engine.Simulation
	pacer  *Pacer
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

func NewPlayer(p kinetics.Parameters, opts Options) (*Player, error) {
	sim, err := engine.Reset(p, opts.Engine...)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Player{
		opts:   opts,
		sim:    sim,
		pacer:  NewPacer(p.TimeStep, opts.WallSecondsPerSimSecond),
		logger: logger,
	}, nil
}

// Play drives the simulation from t until it completes, ctx is done or Pause
// is called. Pausing returns nil; Play again resumes from the last sample.
func (pl *Player) Play(ctx context.Context, t Ticker) error {
	pl.mu.Lock()
	if pl.done != nil {
		pl.mu.Unlock()
		return ErrPlaying
	}
	if pl.sim.Done() {
		pl.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	pl.cancel, pl.done = cancel, done
	from := pl.sim.Last().Time
	pl.mu.Unlock()

	pl.logger.Debug("playback started", "time", from)
	err := t.Run(runCtx, pl.tick)

	pl.mu.Lock()
	pl.cancel, pl.done = nil, nil
	last := pl.sim.Last()
	pl.mu.Unlock()
	cancel()
	close(done)
	pl.logger.Debug("playback stopped", "time", last.Time, "power", last.Power)

	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return err
}

// Pause stops playback and waits for Play to return. History is kept.
func (pl *Player) Pause() {
	pl.mu.Lock()
	cancel, done := pl.cancel, pl.done
	pl.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Advance feeds elapsed wall time to the pacer and performs at most one
// step. Frame-driven callers use it instead of Play.
func (pl *Player) Advance(elapsed time.Duration) (engine.Sample, bool) {
	s, stepped, _ := pl.advance(elapsed)
	return s, stepped
}

func (pl *Player) tick(elapsed time.Duration) bool {
	s, stepped, more := pl.advance(elapsed)
	if stepped && pl.opts.OnStep != nil {
		pl.opts.OnStep(s)
	}
	return more
}

func (pl *Player) advance(elapsed time.Duration) (engine.Sample, bool, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.sim.Done() {
		return engine.Sample{}, false, false
	}
	if !pl.pacer.Tick(elapsed) {
		return engine.Sample{}, false, true
	}
	pl.sim.Step()
	return pl.sim.Last(), true, !pl.sim.Done()
}

// Reset replaces the simulation with a fresh run of p. Invalid parameters
// leave the current simulation and any playback untouched.
func (pl *Player) Reset(p kinetics.Parameters) error {
	sim, err := engine.Reset(p, pl.opts.Engine...)
	if err != nil {
		return err
	}
	pl.Pause()

	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.sim = sim
	pl.pacer = NewPacer(p.TimeStep, pl.opts.WallSecondsPerSimSecond)
	pl.logger.Debug("player reset", "steps", sim.TotalSteps())
	return nil
}

// Seek stops playback and replays the current parameters from t=0 up to
// target. If the replay is cancelled the previous simulation is kept.
func (pl *Player) Seek(ctx context.Context, target float64) error {
	pl.Pause()

	pl.mu.Lock()
	defer pl.mu.Unlock()
	sim, err := engine.RunTo(ctx, pl.sim.Params(), target, pl.opts.Engine...)
	if err != nil {
		return err
	}
	pl.sim = sim
	pl.pacer.Reset()
	pl.logger.Debug("player seek", "target", target, "time", sim.Last().Time)
	return nil
}

func (pl *Player) Playing() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.done != nil
}

func (pl *Player) Done() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.sim.Done()
}

func (pl *Player) Last() engine.Sample {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.sim.Last()
}

func (pl *Player) Params() kinetics.Parameters {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.sim.Params()
}

func (pl *Player) Progress() float64 {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.sim.Progress()
}

// Snapshot copies the history so far.
func (pl *Player) Snapshot() []engine.Sample {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return slices.Clone(pl.sim.Samples())
}

// Feed returns chart arrays for the history so far.
func (pl *Player) Feed() engine.Feed {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.sim.Feed()
}
