package integrators

import "github.com/san-kum/lagrangian/internal/dynamo"

// Verlet is the two-step position Verlet scheme
//
//	q' = 2q - q_prev + dt²·a
//
// Velocities are carried over unchanged unless the corrected variant is
// used, which re-estimates them as (q' - q)/dt + dt·a/2. With fewer than two
// states of history the step falls back to the midpoint rule.
type Verlet struct {
	corrected bool
	bootstrap Midpoint
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func NewVerletCorrected() *Verlet {
	return &Verlet{corrected: true}
}

func (v *Verlet) Name() string {
	if v.corrected {
		return "verlet-corrected"
	}
	return "verlet"
}

func (v *Verlet) Step(acc dynamo.Accelerator, h dynamo.History, dt float64) (dynamo.State, error) {
	prev, ok := h.Previous()
	if !ok {
		return v.bootstrap.Step(acc, h, dt)
	}
	x := h.Current()

	a, err := acc.Acceleration(x)
	if err != nil {
		return dynamo.State{}, err
	}

	qs := x.Qs.Scale(2).Sub(prev.Qs).AddScaled(dt*dt, a)
	if !v.corrected {
		return dynamo.State{Qs: qs, QDots: x.QDots.Clone()}, nil
	}
	return dynamo.State{
		Qs:    qs,
		QDots: qs.Sub(x.Qs).Scale(1/dt).AddScaled(dt/2, a),
	}, nil
}
