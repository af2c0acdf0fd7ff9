package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Name() string
	Step(sys System, x State, t float64, dt float64) State
}

// DerivativeWriter is implemented by systems that can write dX/dt into a
// caller-owned buffer of length StateDim.
type DerivativeWriter interface {
	DeriveInto(dst, x State, t float64)
}

// DeriveInto writes sys's derivative into dst, without allocating when sys
// is a DerivativeWriter.
func DeriveInto(sys System, dst, x State, t float64) {
	if w, ok := sys.(DerivativeWriter); ok {
		w.DeriveInto(dst, x, t)
		return
	}
	copy(dst, sys.Derive(x, t))
}
