// Package dynamo provides the core primitives shared by models and integrators.
//
// The package defines the fundamental interfaces for numerical integration of
// ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//
// # Example
//
//	sys := kinetics.NewSystem(params, rho)
//	next := integrators.NewEuler().Step(sys, dynamo.State{p, c}, t, dt)
//
// Integrators may keep scratch buffers and are NOT safe for concurrent use.
package dynamo
