package kinetics

// Reactivity returns ρ(t) in Δk/k. The ramp inserts r per second for d
// seconds and then holds. With oscillation the inserted reactivity is removed
// again over a second interval of length d; from t = 2d on ρ is exactly ρ₀.
func Reactivity(t float64, p Parameters) float64 {
	rho0 := p.InitialReactivity
	r := p.ReactivityInsertionRate
	d := p.ReactivityInsertionDuration

	if t <= d {
		return rho0 + t*r
	}
	if !p.Oscillation {
		return rho0 + d*r
	}
	if t < 2*d {
		return rho0 + d*r - (t-d)*r
	}
	return rho0
}

// Dollars expresses rho as a multiple of the delayed neutron fraction.
func Dollars(rho float64, p Parameters) float64 {
	return rho / p.DelayedNeutronFraction
}
