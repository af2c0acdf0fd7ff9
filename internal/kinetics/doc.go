// Package kinetics defines the one-group point-kinetics model: the reactivity
// forcing profile and the state derivative of the coupled neutron population
// and delayed-neutron precursor equations.
//
//	dC/dt = (β/Λ)·P − λ·C
//	dP/dt = ((ρ − β)/Λ)·P + λ·C
//
// Everything here is a pure function of its arguments. Mutable run state lives
// in package engine.
package kinetics
