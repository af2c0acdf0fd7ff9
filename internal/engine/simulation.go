package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/integrators"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/logging"
)

// initialCapacity bounds the up-front allocation for long runs.
const initialCapacity = 1 << 16

// Sample is one point of the simulated timeline.
type Sample struct {
	Time              float64 `json:"time_s"`
	Power             float64 `json:"power_relative"`
	ReactivityDollars float64 `json:"reactivity_dollars"`
	Precursor         float64 `json:"precursor_concentration"`
}

// Finite reports whether power and precursor are both finite.
func (s Sample) Finite() bool {
	return dynamo.State{s.Power, s.Precursor}.IsValid()
}

type options struct {
	integrator string
	logger     *slog.Logger
}

type Option func(*options)

// WithIntegrator selects the integrator by name. The default is explicit Euler.
func WithIntegrator(name string) Option {
	return func(o *options) { o.integrator = name }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type Simulation struct {
	params     kinetics.Parameters
	integrator dynamo.Integrator
	system     *kinetics.System
	samples    []Sample
	steps      int
	logger     *slog.Logger
	warned     bool
}

// Reset validates p and returns a new simulation holding only the initial
// condition. Nothing is allocated when validation fails.
func Reset(p kinetics.Parameters, opts ...Option) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o := options{
		integrator: integrators.Default,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	integ, err := integrators.New(o.integrator)
	if err != nil {
		return nil, err
	}

	steps := p.Steps()
	s := &Simulation{
		params:     p,
		integrator: integ,
		system:     kinetics.NewSystem(p, p.InitialReactivity),
		samples:    make([]Sample, 1, min(steps+1, initialCapacity)),
		steps:      steps,
		logger:     o.logger,
	}
	s.samples[0] = Sample{
		Time:              0,
		Power:             1.0,
		ReactivityDollars: kinetics.Dollars(p.InitialReactivity, p),
		Precursor:         p.InitialPrecursor(),
	}

	s.logger.Debug("simulation reset",
		"integrator", integ.Name(),
		"steps", steps,
		"dt", p.TimeStep,
		"total", p.TotalSimulationTime)
	return s, nil
}

// RunTo replays p from t=0 until the last sample time reaches
// min(target, total). On cancellation the partial simulation is returned
// together with ctx.Err().
func RunTo(ctx context.Context, p kinetics.Parameters, target float64, opts ...Option) (*Simulation, error) {
	s, err := Reset(p, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.RunTo(ctx, target); err != nil {
		return s, err
	}
	return s, nil
}

// Step appends the next sample. It returns false, leaving the history
// unchanged, once the run has reached its total simulation time.
func (s *Simulation) Step() bool {
	n := len(s.samples)
	if n > s.steps {
		return false
	}

	prev := s.samples[n-1]
	dt := s.params.TimeStep
	t := float64(n) * dt
	rho := kinetics.Reactivity(t, s.params)

	s.system.Rho = rho
	next := s.integrator.Step(s.system, dynamo.State{prev.Power, prev.Precursor}, prev.Time, dt)

	sample := Sample{
		Time:              t,
		Power:             kinetics.ClampPower(next[0]),
		ReactivityDollars: kinetics.Dollars(rho, s.params),
		Precursor:         next[1],
	}
	s.samples = append(s.samples, sample)

	if !s.warned && !sample.Finite() {
		s.warned = true
		s.logger.Warn("non-finite state", "step", n, "time", t, "power", sample.Power, "precursor", sample.Precursor)
	}
	if s.logger.Enabled(context.Background(), logging.LevelTrace) {
		s.logger.Log(context.Background(), logging.LevelTrace, "step",
			"step", n, "time", t, "power", sample.Power, "dollars", sample.ReactivityDollars)
	}
	return true
}

// RunTo steps until the last sample time reaches min(target, total). A
// target at or before the current time is a no-op.
func (s *Simulation) RunTo(ctx context.Context, target float64) error {
	target = math.Min(target, s.params.TotalSimulationTime)
	n := min(kinetics.StepsUntil(target, s.params.TimeStep), s.steps)
	for i := 0; len(s.samples)-1 < n; i++ {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		s.Step()
	}
	return nil
}

// Done reports whether the run has reached its total simulation time.
func (s *Simulation) Done() bool { return len(s.samples) > s.steps }

func (s *Simulation) Params() kinetics.Parameters { return s.params }

func (s *Simulation) Integrator() string { return s.integrator.Name() }

func (s *Simulation) Len() int { return len(s.samples) }

// TotalSteps is the number of steps after sample 0 in a complete run.
func (s *Simulation) TotalSteps() int { return s.steps }

func (s *Simulation) At(i int) Sample { return s.samples[i] }

func (s *Simulation) Last() Sample { return s.samples[len(s.samples)-1] }

// Samples returns a read-only view of the history. Its capacity is clipped
// so appending to it never writes into the simulation's buffer.
func (s *Simulation) Samples() []Sample {
	return s.samples[:len(s.samples):len(s.samples)]
}

// Progress is the completed fraction of the run in [0, 1].
func (s *Simulation) Progress() float64 {
	if s.steps == 0 {
		return 1
	}
	return math.Min(1, float64(len(s.samples)-1)/float64(s.steps))
}
