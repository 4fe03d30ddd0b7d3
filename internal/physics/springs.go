package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/diff"
)

// Spring is ½k(|q0 - q1| - l)².
func Spring(q []r2.Vec, p diff.Params) float64 {
	stretch := r2.Norm(r2.Sub(q[0], q[1])) - p[RestLength]
	return 0.5 * p.Get(Stiffness, DefaultStiffness) * stretch * stretch
}

// Anchor is a spring from q0 to the fixed point (x, y).
func Anchor(q []r2.Vec, p diff.Params) float64 {
	at := r2.Vec{X: p[AnchorX], Y: p[AnchorY]}
	stretch := r2.Norm(r2.Sub(q[0], at)) - p[RestLength]
	return 0.5 * p.Get(Stiffness, DefaultStiffness) * stretch * stretch
}

// Angle returns the angle at q between the rays to p1 and p2.
func Angle(q, p1, p2 r2.Vec) float64 {
	v, w := r2.Sub(p1, q), r2.Sub(p2, q)
	c := r2.Dot(v, w) / (r2.Norm(v) * r2.Norm(w))
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// AngleSpring is ½k(θ - θ0)² for the angle at q0 between q1 and q2.
func AngleSpring(q []r2.Vec, p diff.Params) float64 {
	d := Angle(q[0], q[1], q[2]) - p[RestAngle]
	return 0.5 * p.Get(Stiffness, DefaultStiffness) * d * d
}
