package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// inset is a variable so expectations round the same way Resolve does.
var inset = DefaultInset

func box() Box {
	return NewBox([2]float64{-10, 10}, [2]float64{0, 5})
}

func TestResolve_ReflectsOutward(t *testing.T) {
	w, err := NewWalls(box(), 1)
	if err != nil {
		t.Fatalf("NewWalls: %v", err)
	}

	s := dynamo.NewState(
		dynamo.Coords{"a": {X: 11, Y: 2}},
		dynamo.Coords{"a": {X: 3, Y: 0.5}},
	)
	got := w.Resolve(s)

	if want := 10 - inset; got.Qs["a"].X != want {
		t.Errorf("x = %v, want %v", got.Qs["a"].X, want)
	}
	if got.QDots["a"].X != -3 {
		t.Errorf("vx = %v, want -3", got.QDots["a"].X)
	}
	if got.Qs["a"].Y != 2 || got.QDots["a"].Y != 0.5 {
		t.Errorf("y axis changed: q=%v v=%v", got.Qs["a"], got.QDots["a"])
	}
	if s.Qs["a"].X != 11 {
		t.Error("Resolve mutated its input")
	}
}

func TestResolve_Cases(t *testing.T) {
	tests := []struct {
		name  string
		e     float64
		q, v  r2.Vec
		wantQ r2.Vec
		wantV r2.Vec
	}{
		{"inside untouched", 0.5, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: -4}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: -4}},
		{"floor with damping", 0.5, r2.Vec{X: 0, Y: -1}, r2.Vec{X: 1, Y: -4}, r2.Vec{X: 0, Y: inset}, r2.Vec{X: 1, Y: 2}},
		{"already heading back", 1, r2.Vec{X: -12, Y: 1}, r2.Vec{X: 2, Y: 0}, r2.Vec{X: -10 + inset, Y: 1}, r2.Vec{X: 2, Y: 0}},
		{"corner", 1, r2.Vec{X: 12, Y: 6}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 10 - inset, Y: 5 - inset}, r2.Vec{X: -1, Y: -1}},
		{"inelastic", 0, r2.Vec{X: 0, Y: 9}, r2.Vec{X: 0, Y: 3}, r2.Vec{X: 0, Y: 5 - inset}, r2.Vec{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWalls(box(), tt.e)
			if err != nil {
				t.Fatalf("NewWalls: %v", err)
			}
			got := w.Resolve(dynamo.NewState(dynamo.Coords{"p": tt.q}, dynamo.Coords{"p": tt.v}))
			if got.Qs["p"] != tt.wantQ {
				t.Errorf("q = %v, want %v", got.Qs["p"], tt.wantQ)
			}
			if got.QDots["p"] != tt.wantV {
				t.Errorf("v = %v, want %v", got.QDots["p"], tt.wantV)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	w, err := NewWalls(box(), 0.8)
	if err != nil {
		t.Fatalf("NewWalls: %v", err)
	}

	s := dynamo.NewState(
		dynamo.Coords{"a": {X: 11, Y: -3}, "b": {X: 0, Y: 2}, "c": {X: -10.5, Y: 5.5}},
		dynamo.Coords{"a": {X: 3, Y: -1}, "b": {X: 1, Y: 1}, "c": {X: -2, Y: 7}},
	)
	once := w.Resolve(s)
	twice := w.Resolve(once)

	for _, id := range s.Qs.Keys() {
		if once.Qs[id] != twice.Qs[id] || once.QDots[id] != twice.QDots[id] {
			t.Errorf("%s: once=(%v, %v) twice=(%v, %v)", id, once.Qs[id], once.QDots[id], twice.Qs[id], twice.QDots[id])
		}
	}
}

func TestWalls_Validate(t *testing.T) {
	for _, e := range []float64{-0.1, 1.5, 2} {
		if _, err := NewWalls(box(), e); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("restitution %v: expected ErrInvalidConfig, got %v", e, err)
		}
	}

	w := &Walls{Box: NewBox([2]float64{0, 0}, [2]float64{0, 1}), Restitution: 1}
	if err := w.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("degenerate box: expected ErrInvalidConfig, got %v", err)
	}
}

func TestRebound_MirrorsClampedAxis(t *testing.T) {
	w, err := NewWalls(box(), 0.5)
	if err != nil {
		t.Fatalf("NewWalls: %v", err)
	}

	prev := dynamo.NewState(
		dynamo.Coords{"a": {X: 9.8, Y: 2}, "b": {X: 0, Y: 1}},
		dynamo.Coords{"a": {}, "b": {}},
	)
	raw := dynamo.NewState(
		dynamo.Coords{"a": {X: 10.2, Y: 2.1}, "b": {X: 0.1, Y: 1.1}},
		dynamo.Coords{"a": {X: 4, Y: 1}, "b": {X: 1, Y: 1}},
	)
	resolved := w.Resolve(raw)
	got := w.Rebound(prev, raw, resolved)

	wantX := resolved.Qs["a"].X + 0.5*0.4
	if math.Abs(got.Qs["a"].X-wantX) > 1e-12 {
		t.Errorf("x = %v, want %v", got.Qs["a"].X, wantX)
	}
	if got.Qs["a"].Y != 2 {
		t.Errorf("unclamped y moved: %v", got.Qs["a"].Y)
	}
	if got.Qs["b"] != prev.Qs["b"] {
		t.Errorf("free particle moved: %v", got.Qs["b"])
	}
	if prev.Qs["a"].X != 9.8 {
		t.Error("Rebound mutated its input")
	}
}
