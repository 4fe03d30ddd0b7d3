// Package dynamo provides the core primitives of the constrained particle
// engine.
//
// The package defines the value types every other package exchanges:
//
//   - [Coords]: named 2D vectors, one per particle identifier
//   - [State]: positions and velocities at one instant
//   - [History]: read-only tail of a trajectory
//   - [Accelerator]: anything that can turn a state into accelerations
//   - [Integrator]: a one-step (or two-step) time stepping scheme
//
// # Example
//
//	qs := dynamo.Coords{"a": {X: 0, Y: 1}, "b": {X: 1, Y: 1}}
//	x0 := dynamo.NewState(qs, nil)
//	next, err := integ.Step(solver, dynamo.History{x0}, dt)
//
// # Immutability
//
// States are never mutated once built. Integrators and the wall resolver
// always return fresh values, so a [History] can be shared freely.
package dynamo
