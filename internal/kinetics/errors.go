package kinetics

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is matched by every validation failure.
var ErrInvalidParameter = errors.New("kinetics: invalid parameter")

// ParameterError reports which field violated its domain.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("kinetics: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
