package integrators

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

// Tableau is the Butcher tableau of an explicit Runge-Kutta scheme.
type Tableau struct {
	Name string
	A    [][]float64
	B    []float64
}

// NewTableau checks that a is square and strictly lower triangular with one
// row per weight in b.
func NewTableau(name string, a [][]float64, b []float64) (Tableau, error) {
	s := len(b)
	if s == 0 {
		return Tableau{}, fmt.Errorf("%w: tableau %q has no stages", dynamo.ErrInvalidConfig, name)
	}
	if len(a) != s {
		return Tableau{}, fmt.Errorf("%w: tableau %q has %d rows for %d weights", dynamo.ErrInvalidConfig, name, len(a), s)
	}
	for i, row := range a {
		if len(row) != s {
			return Tableau{}, fmt.Errorf("%w: tableau %q row %d has %d entries, want %d", dynamo.ErrInvalidConfig, name, i, len(row), s)
		}
		for j := i; j < s; j++ {
			if row[j] != 0 {
				return Tableau{}, fmt.Errorf("%w: tableau %q is not explicit at a[%d][%d]", dynamo.ErrInvalidConfig, name, i, j)
			}
		}
	}

	t := Tableau{Name: name, A: make([][]float64, s), B: append([]float64(nil), b...)}
	for i := range a {
		t.A[i] = append([]float64(nil), a[i]...)
	}
	return t, nil
}

func (t Tableau) Stages() int { return len(t.B) }

func mustTableau(name string, a [][]float64, b []float64) Tableau {
	t, err := NewTableau(name, a, b)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	ssprk3Tableau = mustTableau("ssprk3",
		[][]float64{
			{0, 0, 0},
			{1, 0, 0},
			{0.25, 0.25, 0},
		},
		[]float64{1.0 / 6, 1.0 / 6, 2.0 / 3},
	)

	rk4Tableau = mustTableau("rk4",
		[][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		[]float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	)
)

// RungeKutta integrates y = (q, q̇) with y' = (q̇, a(q, q̇)) using an explicit
// tableau.
type RungeKutta struct {
	tableau Tableau
}

func NewRungeKutta(t Tableau) *RungeKutta {
	return &RungeKutta{tableau: t}
}

// NewSSPRK3 is the three-stage strong stability preserving scheme.
func NewSSPRK3() *RungeKutta {
	return NewRungeKutta(ssprk3Tableau)
}

// NewRK4 is the classical four-stage scheme.
func NewRK4() *RungeKutta {
	return NewRungeKutta(rk4Tableau)
}

func (r *RungeKutta) Name() string { return r.tableau.Name }

func slope(acc dynamo.Accelerator, y dynamo.State) (dynamo.State, error) {
	a, err := acc.Acceleration(y)
	if err != nil {
		return dynamo.State{}, err
	}
	return dynamo.State{Qs: y.QDots, QDots: a}, nil
}

// combine returns Σ w[i]·k[i], starting from an explicit zero.
func combine(keys []string, w []float64, k []dynamo.State) dynamo.State {
	sum := dynamo.State{Qs: dynamo.ZeroCoords(keys), QDots: dynamo.ZeroCoords(keys)}
	for i := range k {
		if w[i] == 0 {
			continue
		}
		sum.Qs = sum.Qs.AddScaled(w[i], k[i].Qs)
		sum.QDots = sum.QDots.AddScaled(w[i], k[i].QDots)
	}
	return sum
}

func (r *RungeKutta) Step(acc dynamo.Accelerator, h dynamo.History, dt float64) (dynamo.State, error) {
	y, err := current(h)
	if err != nil {
		return dynamo.State{}, err
	}

	keys := y.Qs.Keys()
	s := r.tableau.Stages()
	k := make([]dynamo.State, 0, s)

	for l := 0; l < s; l++ {
		inc := combine(keys, r.tableau.A[l][:l], k)
		sample := dynamo.State{
			Qs:    y.Qs.AddScaled(dt, inc.Qs),
			QDots: y.QDots.AddScaled(dt, inc.QDots),
		}
		kl, err := slope(acc, sample)
		if err != nil {
			return dynamo.State{}, fmt.Errorf("%s stage %d: %w", r.tableau.Name, l, err)
		}
		k = append(k, kl)
	}

	inc := combine(keys, r.tableau.B, k)
	return dynamo.State{
		Qs:    y.Qs.AddScaled(dt, inc.Qs),
		QDots: y.QDots.AddScaled(dt, inc.QDots),
	}, nil
}
