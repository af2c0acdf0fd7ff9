package integrators

import "github.com/san-kum/reactorsim/internal/dynamo"

// rk4Nodes are the stage offsets (fractions of dt) of the classic tableau.
var rk4Nodes = [4]float64{0, 0.5, 0.5, 1}

// RK4 is the classic fourth-order Runge-Kutta method. Stage derivatives are
// written into buffers reused across calls, so an RK4 must not be shared
// across goroutines.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.resize(len(x))

	dynamo.DeriveInto(sys, r.k[0], x, t)
	for s := 1; s < 4; s++ {
		h := rk4Nodes[s] * dt
		for i := range x {
			r.stage[i] = x[i] + h*r.k[s-1][i]
		}
		dynamo.DeriveInto(sys, r.k[s], r.stage, t+h)
	}

	next := make(dynamo.State, len(x))
	for i := range x {
		next[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
