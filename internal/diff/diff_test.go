package diff

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func relErr(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		x    float64
		want float64
	}{
		{"cubic", func(x float64) float64 { return x * x * x }, 2, 12},
		{"sin", math.Sin, 0.7, math.Cos(0.7)},
		{"exp large", math.Exp, 10, math.Exp(10)},
		{"negative point", func(x float64) float64 { return x * x }, -3, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derivative(tt.f, tt.x)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e := relErr(got, tt.want); e > 1e-6 {
				t.Errorf("Derivative = %.12f, want %.12f (rel err %e)", got, tt.want, e)
			}
		})
	}
}

func TestDerivative_ZeroFallback(t *testing.T) {
	got, err := Derivative(func(x float64) float64 { return 3*x + 1 }, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-3) > 1e-6 {
		t.Errorf("linear slope at 0 = %f, want 3", got)
	}

	// sampled at sqrt(eps) and eps: (h^2 - eps^2)/(h - eps) = h + eps
	got, err = Derivative(func(x float64) float64 { return x * x }, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Sqrt(Epsilon) + Epsilon; math.Abs(got-want) > 1e-20 {
		t.Errorf("x^2 slope at 0 = %e, want %e", got, want)
	}
}

func TestDerivative_Singularity(t *testing.T) {
	_, err := Derivative(math.Log, -1)
	if !errors.Is(err, dynamo.ErrNumericalSingularity) {
		t.Errorf("expected ErrNumericalSingularity, got %v", err)
	}
}

func TestSecondDerivative(t *testing.T) {
	got, err := SecondDerivative(func(x float64) float64 { return x * x * x }, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-12) > 1e-5 {
		t.Errorf("SecondDerivative = %f, want 12", got)
	}

	got, err = SecondDerivative(func(x float64) float64 { return 5 * x * x }, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-10) > 1e-5 {
		t.Errorf("SecondDerivative at 0 = %f, want 10", got)
	}
}

func TestGradient2D_Quadratic(t *testing.T) {
	k := 2.5
	p := r2.Vec{X: 1, Y: 1}
	u := func(q r2.Vec) float64 { return k * r2.Norm2(r2.Sub(q, p)) }

	points := []r2.Vec{{X: 3, Y: -2}, {X: -0.5, Y: 4}, {X: 10, Y: 3}, {X: 0, Y: 2}}
	for _, q := range points {
		got, err := Gradient2D(u, q)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", q, err)
		}
		want := r2.Scale(2*k, r2.Sub(q, p))
		if e := r2.Norm(r2.Sub(got, want)) / r2.Norm(want); e > 1e-6 {
			t.Errorf("gradient at %v = %v, want %v (rel err %e)", q, got, want, e)
		}
	}
}

func TestPartial_Positional(t *testing.T) {
	f := func(q []r2.Vec, p Params) float64 {
		return p["G"] * p["G"] * q[0].X * q[1].Y
	}
	q := []r2.Vec{{X: 2, Y: 5}, {X: 7, Y: 3}}
	p := Params{"G": 4}

	g0, err := Partial(f, Positional(0), q, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relErr(g0.X, 48) > 1e-6 || math.Abs(g0.Y) > 1e-9 {
		t.Errorf("d/dq0 = %v, want (48, 0)", g0)
	}

	g1, err := Partial(f, Positional(1), q, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(g1.X) > 1e-9 || relErr(g1.Y, 32) > 1e-6 {
		t.Errorf("d/dq1 = %v, want (0, 32)", g1)
	}

	if q[0] != (r2.Vec{X: 2, Y: 5}) {
		t.Error("Partial mutated its arguments")
	}
}

func TestPartial_Keyword(t *testing.T) {
	f := func(q []r2.Vec, p Params) float64 {
		return p["G"] * p["G"] * q[0].X * q[1].Y
	}
	q := []r2.Vec{{X: 2, Y: 5}, {X: 7, Y: 3}}
	p := Params{"G": 4}

	g, err := Partial(f, Keyword("G"), q, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relErr(g.X, 2*4*2*3) > 1e-6 {
		t.Errorf("d/dG = %f, want 48", g.X)
	}
	if p["G"] != 4 {
		t.Error("Partial mutated the caller's params")
	}
}

func TestPartial_InvalidIndex(t *testing.T) {
	f := func(q []r2.Vec, p Params) float64 { return q[0].X }
	q := []r2.Vec{{X: 1}}

	for _, w := range []Wrt{Positional(1), Positional(-1), Keyword("missing")} {
		if _, err := Partial(f, w, q, Params{}); !errors.Is(err, dynamo.ErrInvalidIndex) {
			t.Errorf("%s: expected ErrInvalidIndex, got %v", w, err)
		}
	}
}
