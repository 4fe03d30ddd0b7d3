// Package trajectory stores the states produced by a run, in step order.
package trajectory

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Trajectory is an append-only sequence of states indexed by step number.
// It has a single writer.
type Trajectory struct {
	ids    []string
	states []dynamo.State
	times  []float64
}

func New(x0 dynamo.State) *Trajectory {
	return &Trajectory{
		ids:    x0.Qs.Keys(),
		states: []dynamo.State{x0},
		times:  []float64{0},
	}
}

// Append records s at time t. Every state must carry the initial particle ids.
func (tr *Trajectory) Append(s dynamo.State, t float64) error {
	first := tr.states[0]
	if !s.Qs.SameKeys(first.Qs) || !s.QDots.SameKeys(first.Qs) {
		return fmt.Errorf("%w: state %v does not match trajectory ids %v", dynamo.ErrKeyMismatch, s.Qs.Keys(), tr.ids)
	}
	tr.states = append(tr.states, s)
	tr.times = append(tr.times, t)
	return nil
}

func (tr *Trajectory) Len() int { return len(tr.states) }

// IDs returns the particle ids in sorted order.
func (tr *Trajectory) IDs() []string { return tr.ids }

func (tr *Trajectory) At(step int) (dynamo.State, error) {
	if step < 0 || step >= len(tr.states) {
		return dynamo.State{}, fmt.Errorf("%w: step %d of %d", dynamo.ErrInvalidIndex, step, len(tr.states))
	}
	return tr.states[step], nil
}

func (tr *Trajectory) Time(step int) (float64, error) {
	if step < 0 || step >= len(tr.times) {
		return 0, fmt.Errorf("%w: step %d of %d", dynamo.ErrInvalidIndex, step, len(tr.times))
	}
	return tr.times[step], nil
}

func (tr *Trajectory) Last() dynamo.State { return tr.states[len(tr.states)-1] }

// History returns the last two states, or one before the first step.
func (tr *Trajectory) History() dynamo.History {
	n := len(tr.states)
	if n < 2 {
		return dynamo.History{tr.states[0]}
	}
	return dynamo.History{tr.states[n-2], tr.states[n-1]}
}

func (tr *Trajectory) position(id string, step int) (r2.Vec, error) {
	s, err := tr.At(step)
	if err != nil {
		return r2.Vec{}, err
	}
	q, ok := s.Qs[id]
	if !ok {
		return r2.Vec{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownCoordinate, id)
	}
	return q, nil
}

// X returns the x position of particle id at a step.
func (tr *Trajectory) X(id string, step int) (float64, error) {
	q, err := tr.position(id, step)
	return q.X, err
}

// Y returns the y position of particle id at a step.
func (tr *Trajectory) Y(id string, step int) (float64, error) {
	q, err := tr.position(id, step)
	return q.Y, err
}

// Times returns a copy of the recorded times.
func (tr *Trajectory) Times() []float64 {
	return append([]float64(nil), tr.times...)
}

// Series returns every recorded position of particle id.
func (tr *Trajectory) Series(id string) ([]r2.Vec, error) {
	if _, ok := tr.states[0].Qs[id]; !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownCoordinate, id)
	}
	out := make([]r2.Vec, len(tr.states))
	for i, s := range tr.states {
		out[i] = s.Qs[id]
	}
	return out, nil
}
