package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidState indicates a state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a setup parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownIntegrator indicates an integrator name missing from the registry.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrUnknownCoordinate indicates a coordinate name no particle carries.
	ErrUnknownCoordinate = errors.New("dynamo: unknown coordinate")

	// ErrInvalidIndex indicates a gradient request for an argument the
	// function does not declare.
	ErrInvalidIndex = errors.New("dynamo: invalid gradient index")

	// ErrKeyMismatch indicates arithmetic between coordinate vectors with
	// different key sets.
	ErrKeyMismatch = errors.New("dynamo: coordinate key sets differ")

	// ErrNumericalSingularity indicates a derivative that stayed non-finite
	// after the fixed-step fallback.
	ErrNumericalSingularity = errors.New("dynamo: numerical singularity")

	// ErrUnsolvableConstraints indicates a singular or ill-conditioned
	// Lagrange multiplier system.
	ErrUnsolvableConstraints = errors.New("dynamo: constraint system unsolvable")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
