package kinetics

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParametersValid(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("default parameters invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mod   func(p *Parameters)
	}{
		{"zero beta", "delayed_neutron_fraction", func(p *Parameters) { p.DelayedNeutronFraction = 0 }},
		{"negative beta", "delayed_neutron_fraction", func(p *Parameters) { p.DelayedNeutronFraction = -0.1 }},
		{"beta of one", "delayed_neutron_fraction", func(p *Parameters) { p.DelayedNeutronFraction = 1 }},
		{"NaN beta", "delayed_neutron_fraction", func(p *Parameters) { p.DelayedNeutronFraction = math.NaN() }},
		{"zero lifetime", "prompt_neutron_lifetime", func(p *Parameters) { p.PromptNeutronLifetime = 0 }},
		{"negative lambda", "precursor_decay_constant", func(p *Parameters) { p.PrecursorDecayConstant = -1 }},
		{"infinite reactivity", "initial_reactivity", func(p *Parameters) { p.InitialReactivity = math.Inf(1) }},
		{"NaN rate", "reactivity_insertion_rate", func(p *Parameters) { p.ReactivityInsertionRate = math.NaN() }},
		{"negative duration", "reactivity_insertion_duration", func(p *Parameters) { p.ReactivityInsertionDuration = -1 }},
		{"zero dt", "time_step", func(p *Parameters) { p.TimeStep = 0 }},
		{"negative dt", "time_step", func(p *Parameters) { p.TimeStep = -0.1 }},
		{"zero total", "total_simulation_time", func(p *Parameters) { p.TotalSimulationTime = 0 }},
		{"infinite total", "total_simulation_time", func(p *Parameters) { p.TotalSimulationTime = math.Inf(1) }},
		{"too many steps", "total_simulation_time", func(p *Parameters) {
			p.TotalSimulationTime = 1e6
			p.TimeStep = 1e-3
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mod(&p)

			err := p.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("error %v does not match ErrInvalidParameter", err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParameterError", err)
			}
			if pe.Field != tt.field {
				t.Errorf("Field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}

func TestValidateAcceptsNegativeRateAndZeroDuration(t *testing.T) {
	p := DefaultParameters()
	p.ReactivityInsertionRate = -0.001
	p.ReactivityInsertionDuration = 0
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStepsUntil(t *testing.T) {
	tests := []struct {
		t, dt float64
		want  int
	}{
		{50, 0.1, 500},
		{10, 0.1, 100},
		{0.3, 0.1, 3},
		{0.35, 0.1, 4},
		{1, 0.3, 4},
		{0, 0.1, 0},
		{-5, 0.1, 0},
		{math.NaN(), 0.1, 0},
		{math.Inf(1), 0.1, math.MaxInt},
		{1e300, 0.1, math.MaxInt},
	}

	for _, tt := range tests {
		if got := StepsUntil(tt.t, tt.dt); got != tt.want {
			t.Errorf("StepsUntil(%v, %v) = %d, want %d", tt.t, tt.dt, got, tt.want)
		}
	}
}

func TestInitialPrecursor(t *testing.T) {
	p := DefaultParameters()
	want := p.DelayedNeutronFraction / p.PrecursorDecayConstant
	if got := p.InitialPrecursor(); math.Abs(got-0.065) > 1e-15 || got != want {
		t.Errorf("InitialPrecursor() = %v, want %v", got, want)
	}
}
