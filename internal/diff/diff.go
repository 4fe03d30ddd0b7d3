// Package diff approximates derivatives by finite differences.
//
// Every gradient in the engine goes through [Derivative]: a central
// difference whose step scales with the evaluation point, with a fixed-step
// fallback when the scaled step collapses (x = 0) or the quotient is not
// finite.
package diff

import (
	"fmt"
	"math"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the float64 machine epsilon.
const Epsilon = 0x1p-52

var (
	sqrtEps   = math.Sqrt(Epsilon)
	fourthEps = math.Sqrt(sqrtEps)
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Derivative approximates f'(x) with a central difference of step
// sqrt(eps)*x, divided by the representable span rather than 2h.
//
// When the span is zero or the quotient is not finite, it falls back to the
// absolute step sqrt(eps) sampled at x+sqrt(eps) and x+eps.
func Derivative(f func(float64) float64, x float64) (float64, error) {
	h := sqrtEps * x
	xph, xmh := x+h, x-h
	if span := xph - xmh; span != 0 {
		if d := (f(xph) - f(xmh)) / span; finite(d) {
			return d, nil
		}
	}

	hi, lo := x+sqrtEps, x+Epsilon
	d := (f(hi) - f(lo)) / (hi - lo)
	if !finite(d) {
		return d, fmt.Errorf("%w: derivative at x=%g", dynamo.ErrNumericalSingularity, x)
	}
	return d, nil
}

// SecondDerivative approximates f''(x) with the three-point stencil.
func SecondDerivative(f func(float64) float64, x float64) (float64, error) {
	h := fourthEps * math.Max(1, math.Abs(x))
	xph, xmh := x+h, x-h
	h = (xph - xmh) / 2

	d := (f(xph) - 2*f(x) + f(xmh)) / (h * h)
	if !finite(d) {
		return d, fmt.Errorf("%w: second derivative at x=%g", dynamo.ErrNumericalSingularity, x)
	}
	return d, nil
}

// Gradient2D returns (df/dx, df/dy) at q, restricting f to one axis at a time.
func Gradient2D(f func(r2.Vec) float64, q r2.Vec) (r2.Vec, error) {
	fx, err := Derivative(func(x float64) float64 { return f(r2.Vec{X: x, Y: q.Y}) }, q.X)
	if err != nil {
		return r2.Vec{}, err
	}
	fy, err := Derivative(func(y float64) float64 { return f(r2.Vec{X: q.X, Y: y}) }, q.Y)
	if err != nil {
		return r2.Vec{}, err
	}
	return r2.Vec{X: fx, Y: fy}, nil
}
