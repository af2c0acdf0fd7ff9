package kinetics

import "github.com/san-kum/reactorsim/internal/dynamo"

// Derivative evaluates the point-kinetics right-hand side at reactivity rho.
func Derivative(p Parameters, rho, power, precursor float64) (dPower, dPrecursor float64) {
	beta := p.DelayedNeutronFraction
	lifetime := p.PromptNeutronLifetime
	lambda := p.PrecursorDecayConstant

	dPrecursor = (beta/lifetime)*power - lambda*precursor
	dPower = ((rho-beta)/lifetime)*power + lambda*precursor
	return dPower, dPrecursor
}

// System adapts the model to dynamo.System with state [P, C]. Reactivity is
// held at Rho for the duration of one step.
type System struct {
	Params Parameters
	Rho    float64
}

func NewSystem(p Parameters, rho float64) *System {
	return &System{Params: p, Rho: rho}
}

func (s *System) StateDim() int { return 2 }

func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, 2)
	s.DeriveInto(dx, x, t)
	return dx
}

func (s *System) DeriveInto(dst, x dynamo.State, t float64) {
	dst[0], dst[1] = Derivative(s.Params, s.Rho, x[0], x[1])
}

// ClampPower applies the low-end power floor. NaN passes through unchanged.
func ClampPower(p float64) float64 {
	if p < PowerFloor {
		return PowerFloor
	}
	return p
}
