package integrators

import "github.com/san-kum/lagrangian/internal/dynamo"

// Midpoint takes a half Euler step and applies the velocity and
// acceleration found there over the full step.
type Midpoint struct {
	half Euler
}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Name() string { return "midpoint" }

func (m *Midpoint) Step(acc dynamo.Accelerator, h dynamo.History, dt float64) (dynamo.State, error) {
	x, err := current(h)
	if err != nil {
		return dynamo.State{}, err
	}
	mid, err := m.half.Step(acc, dynamo.History{x}, dt/2)
	if err != nil {
		return dynamo.State{}, err
	}
	a, err := acc.Acceleration(mid)
	if err != nil {
		return dynamo.State{}, err
	}
	return dynamo.State{
		Qs:    x.Qs.AddScaled(dt, mid.QDots),
		QDots: x.QDots.AddScaled(dt, a),
	}, nil
}
