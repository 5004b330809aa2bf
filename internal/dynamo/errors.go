package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrCoincident indicates two bodies are too close for the force law.
	ErrCoincident = errors.New("dynamo: degenerate separation between bodies")

	// ErrInvalidConfig indicates a parameter or initial body rejected before stepping.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a snapshot with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SeparationError names the pair and the step at which the force law broke down.
type SeparationError struct {
	Step     int
	Time     float64
	I, J     int
	A, B     string
	Distance float64
}

func (e *SeparationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): bodies %q[%d] and %q[%d] separated by %g",
		e.Step, e.Time, e.A, e.I, e.B, e.J, e.Distance)
}

func (e *SeparationError) Unwrap() error { return ErrCoincident }

type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// SimError wraps an error with the step it happened at.
type SimError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error { return e.Wrapped }
