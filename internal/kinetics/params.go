package kinetics

import "math"

const (
	// PowerFloor keeps relative power strictly positive for log-scale consumers.
	PowerFloor = 0.001

	// MaxSteps bounds TotalSimulationTime/TimeStep so a run cannot grow without limit.
	MaxSteps = 10_000_000

	// stepTolerance absorbs binary rounding in total/dt when counting steps.
	stepTolerance = 1e-9
)

// Parameters is the immutable input of one simulation run.
type Parameters struct {
	DelayedNeutronFraction      float64 `yaml:"delayed_neutron_fraction" mapstructure:"delayed_neutron_fraction" json:"delayed_neutron_fraction"`
	PromptNeutronLifetime       float64 `yaml:"prompt_neutron_lifetime" mapstructure:"prompt_neutron_lifetime" json:"prompt_neutron_lifetime"`
	PrecursorDecayConstant      float64 `yaml:"precursor_decay_constant" mapstructure:"precursor_decay_constant" json:"precursor_decay_constant"`
	InitialReactivity           float64 `yaml:"initial_reactivity" mapstructure:"initial_reactivity" json:"initial_reactivity"`
	ReactivityInsertionRate     float64 `yaml:"reactivity_insertion_rate" mapstructure:"reactivity_insertion_rate" json:"reactivity_insertion_rate"`
	ReactivityInsertionDuration float64 `yaml:"reactivity_insertion_duration" mapstructure:"reactivity_insertion_duration" json:"reactivity_insertion_duration"`
	Oscillation                 bool    `yaml:"oscillation" mapstructure:"oscillation" json:"oscillation"`
	TotalSimulationTime         float64 `yaml:"total_simulation_time" mapstructure:"total_simulation_time" json:"total_simulation_time"`
	TimeStep                    float64 `yaml:"time_step" mapstructure:"time_step" json:"time_step"`
}

// DefaultParameters returns a typical thermal-reactor parameter set with no
// reactivity insertion.
func DefaultParameters() Parameters {
	return Parameters{
		DelayedNeutronFraction:      0.0065,
		PromptNeutronLifetime:       1e-4,
		PrecursorDecayConstant:      0.1,
		InitialReactivity:           0,
		ReactivityInsertionRate:     0,
		ReactivityInsertionDuration: 10,
		TotalSimulationTime:         50,
		TimeStep:                    0.1,
	}
}

// Validate checks every field against its domain. It returns a *ParameterError
// for the first violation.
func (p Parameters) Validate() error {
	checks := []struct {
		field  string
		value  float64
		ok     bool
		reason string
	}{
		{"delayed_neutron_fraction", p.DelayedNeutronFraction, p.DelayedNeutronFraction > 0 && p.DelayedNeutronFraction < 1, "must be in (0, 1)"},
		{"prompt_neutron_lifetime", p.PromptNeutronLifetime, p.PromptNeutronLifetime > 0 && !math.IsInf(p.PromptNeutronLifetime, 1), "must be positive and finite"},
		{"precursor_decay_constant", p.PrecursorDecayConstant, p.PrecursorDecayConstant > 0 && !math.IsInf(p.PrecursorDecayConstant, 1), "must be positive and finite"},
		{"initial_reactivity", p.InitialReactivity, isFinite(p.InitialReactivity), "must be finite"},
		{"reactivity_insertion_rate", p.ReactivityInsertionRate, isFinite(p.ReactivityInsertionRate), "must be finite"},
		{"reactivity_insertion_duration", p.ReactivityInsertionDuration, p.ReactivityInsertionDuration >= 0 && !math.IsInf(p.ReactivityInsertionDuration, 1), "must be non-negative and finite"},
		{"time_step", p.TimeStep, p.TimeStep > 0 && !math.IsInf(p.TimeStep, 1), "must be positive and finite"},
		{"total_simulation_time", p.TotalSimulationTime, p.TotalSimulationTime > 0 && !math.IsInf(p.TotalSimulationTime, 1), "must be positive and finite"},
	}
	for _, c := range checks {
		if !c.ok {
			return &ParameterError{Field: c.field, Value: c.value, Reason: c.reason}
		}
	}

	if n := p.TotalSimulationTime / p.TimeStep; n > MaxSteps {
		return &ParameterError{
			Field:  "total_simulation_time",
			Value:  p.TotalSimulationTime,
			Reason: "total_simulation_time/time_step exceeds the step limit",
		}
	}
	return nil
}

// Steps is the number of integration steps that follow sample 0 for a full
// run. The caller must have validated p.
func (p Parameters) Steps() int {
	return StepsUntil(p.TotalSimulationTime, p.TimeStep)
}

// StepsUntil is the smallest n with n·dt ≥ t, allowing for rounding in t/dt.
// Non-positive and NaN t need no steps; counts beyond the int range
// saturate at math.MaxInt.
func StepsUntil(t, dt float64) int {
	if !(t > 0) {
		return 0
	}
	n := math.Ceil(t/dt - stepTolerance)
	if n >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}

// InitialPrecursor is the precursor seed β/λ.
func (p Parameters) InitialPrecursor() float64 {
	return p.DelayedNeutronFraction / p.PrecursorDecayConstant
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
