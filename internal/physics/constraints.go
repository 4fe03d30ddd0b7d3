package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/diff"
)

// Distance holds |q0 - q1| = l, written as |q0 - q1|² - l² = 0.
func Distance(q []r2.Vec, p diff.Params) float64 {
	l := p[RestLength]
	return r2.Norm2(r2.Sub(q[0], q[1])) - l*l
}

// Pin holds q0 at distance l from the fixed point (x, y).
func Pin(q []r2.Vec, p diff.Params) float64 {
	l := p[RestLength]
	return r2.Norm2(r2.Sub(q[0], r2.Vec{X: p[AnchorX], Y: p[AnchorY]})) - l*l
}
