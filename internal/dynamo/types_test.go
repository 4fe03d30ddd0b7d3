package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestCoords_Arithmetic(t *testing.T) {
	u := Coords{"a": {X: 1, Y: 2}, "b": {X: -3, Y: 0.5}}
	v := Coords{"a": {X: 0.1, Y: -4}, "b": {X: 7, Y: 1e-3}}

	back := u.Add(v).Sub(v)
	for k := range u {
		if !near(back[k], u[k], 1e-12) {
			t.Errorf("(u+v)-v [%s] = %v, want %v", k, back[k], u[k])
		}
	}

	zero := u.Scale(0)
	for k, vec := range zero {
		if vec != (r2.Vec{}) {
			t.Errorf("0*u [%s] = %v, want zero", k, vec)
		}
	}

	scaled := u.AddScaled(2, v)
	if !near(scaled["a"], r2.Vec{X: 1.2, Y: -6}, 1e-12) {
		t.Errorf("AddScaled failed: got %v", scaled["a"])
	}
}

func TestCoords_DoesNotMutate(t *testing.T) {
	u := Coords{"a": {X: 1, Y: 1}}
	v := Coords{"a": {X: 2, Y: 2}}
	_ = u.Add(v)
	_ = u.Scale(3)
	if u["a"] != (r2.Vec{X: 1, Y: 1}) {
		t.Errorf("receiver mutated: %v", u["a"])
	}
}

func TestCoords_KeyMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on mismatched keys")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrKeyMismatch) {
			t.Errorf("panic value = %v, want ErrKeyMismatch", r)
		}
	}()
	Coords{"a": {}}.Add(Coords{"b": {}})
}

func TestCoords_Keys(t *testing.T) {
	c := ZeroCoords([]string{"q2", "q10", "q1"})
	keys := c.Keys()
	want := []string{"q1", "q10", "q2"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		qs    Coords
		valid bool
	}{
		{"empty", Coords{}, true},
		{"normal", Coords{"a": {X: 1, Y: 2}}, true},
		{"with NaN", Coords{"a": {X: math.NaN()}}, false},
		{"with +Inf", Coords{"a": {Y: math.Inf(1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewState(tt.qs, nil).IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestNewState_DefaultsVelocities(t *testing.T) {
	qs := Coords{"a": {X: 1}, "b": {Y: 2}}
	s := NewState(qs, nil)
	if !s.QDots.SameKeys(qs) {
		t.Fatalf("velocity keys %v, want %v", s.QDots.Keys(), qs.Keys())
	}
	qs["a"] = r2.Vec{X: 99}
	if s.Qs["a"].X != 1 {
		t.Error("NewState did not copy positions")
	}
}

func TestHistory_Previous(t *testing.T) {
	a := NewState(Coords{"x": {X: 1}}, nil)
	b := NewState(Coords{"x": {X: 2}}, nil)

	if _, ok := (History{a}).Previous(); ok {
		t.Error("single-state history should have no previous state")
	}

	prev, ok := History{a, b}.Previous()
	if !ok || prev.Qs["x"].X != 1 {
		t.Errorf("Previous() = %v, %v", prev, ok)
	}
	if (History{a, b}).Current().Qs["x"].X != 2 {
		t.Error("Current() returned the wrong state")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrUnsolvableConstraints}
	expected := "step 150 (t=1.5000): dynamo: constraint system unsolvable"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrUnsolvableConstraints) {
		t.Error("SimulationError should unwrap to its sentinel")
	}
}
