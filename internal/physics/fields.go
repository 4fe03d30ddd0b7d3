package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/diff"
)

// Gravity returns Σ mᵢ g yᵢ over its arguments, with masses given in
// argument order and g read from the "g" parameter.
func Gravity(masses []float64) diff.Func {
	ms := append([]float64(nil), masses...)
	return func(q []r2.Vec, p diff.Params) float64 {
		g := p.Get(FieldG, DefaultG)
		u := 0.0
		for i, qi := range q {
			u += ms[i] * g * qi.Y
		}
		return u
	}
}

// NewtonGravity is -G m1 m2 / |q0 - q1|.
func NewtonGravity(q []r2.Vec, p diff.Params) float64 {
	d := r2.Norm(r2.Sub(q[0], q[1]))
	return -p[BigG] * p[Mass1] * p[Mass2] / d
}
