package integrators

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

func current(h dynamo.History) (dynamo.State, error) {
	if len(h) == 0 {
		return dynamo.State{}, fmt.Errorf("%w: empty history", dynamo.ErrInvalidState)
	}
	return h.Current(), nil
}

// Euler is the forward Euler scheme.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(acc dynamo.Accelerator, h dynamo.History, dt float64) (dynamo.State, error) {
	x, err := current(h)
	if err != nil {
		return dynamo.State{}, err
	}
	a, err := acc.Acceleration(x)
	if err != nil {
		return dynamo.State{}, err
	}
	return dynamo.State{
		Qs:    x.Qs.AddScaled(dt, x.QDots),
		QDots: x.QDots.AddScaled(dt, a),
	}, nil
}

// SemiImplicitEuler updates velocities first and moves positions with the
// new velocities.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "semi-implicit-euler" }

func (e *SemiImplicitEuler) Step(acc dynamo.Accelerator, h dynamo.History, dt float64) (dynamo.State, error) {
	x, err := current(h)
	if err != nil {
		return dynamo.State{}, err
	}
	a, err := acc.Acceleration(x)
	if err != nil {
		return dynamo.State{}, err
	}
	qdots := x.QDots.AddScaled(dt, a)
	return dynamo.State{
		Qs:    x.Qs.AddScaled(dt, qdots),
		QDots: qdots,
	}, nil
}
