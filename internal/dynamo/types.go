package dynamo

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Coords maps particle identifiers to 2D vectors.
type Coords map[string]r2.Vec

// ZeroCoords returns a zero vector for every key.
func ZeroCoords(keys []string) Coords {
	c := make(Coords, len(keys))
	for _, k := range keys {
		c[k] = r2.Vec{}
	}
	return c
}

func (c Coords) Clone() Coords {
	out := make(Coords, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the identifiers in sorted order.
func (c Coords) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SameKeys reports whether c and other carry exactly the same identifiers.
func (c Coords) SameKeys(other Coords) bool {
	if len(c) != len(other) {
		return false
	}
	for k := range c {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

func (c Coords) mustMatch(other Coords) {
	if !c.SameKeys(other) {
		panic(fmt.Errorf("%w: %v vs %v", ErrKeyMismatch, c.Keys(), other.Keys()))
	}
}

// Add returns c + other. It panics if the key sets differ.
func (c Coords) Add(other Coords) Coords {
	c.mustMatch(other)
	out := make(Coords, len(c))
	for k, v := range c {
		out[k] = r2.Add(v, other[k])
	}
	return out
}

// Sub returns c - other. It panics if the key sets differ.
func (c Coords) Sub(other Coords) Coords {
	c.mustMatch(other)
	out := make(Coords, len(c))
	for k, v := range c {
		out[k] = r2.Sub(v, other[k])
	}
	return out
}

func (c Coords) Scale(factor float64) Coords {
	out := make(Coords, len(c))
	for k, v := range c {
		out[k] = r2.Scale(factor, v)
	}
	return out
}

// AddScaled returns c + factor*other without allocating the scaled term.
func (c Coords) AddScaled(factor float64, other Coords) Coords {
	c.mustMatch(other)
	out := make(Coords, len(c))
	for k, v := range c {
		out[k] = r2.Add(v, r2.Scale(factor, other[k]))
	}
	return out
}

func (c Coords) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
			return false
		}
	}
	return true
}

// State holds positions and velocities at one instant.
type State struct {
	Qs    Coords
	QDots Coords
}

// NewState copies qs and qdots into a fresh state. A nil qdots means every
// particle starts at rest.
func NewState(qs, qdots Coords) State {
	s := State{Qs: qs.Clone()}
	if qdots == nil {
		s.QDots = ZeroCoords(qs.Keys())
	} else {
		s.QDots = qdots.Clone()
	}
	return s
}

func (s State) Clone() State {
	return State{Qs: s.Qs.Clone(), QDots: s.QDots.Clone()}
}

func (s State) IsValid() bool {
	return s.Qs.IsValid() && s.QDots.IsValid()
}

// History is the read-only tail of a trajectory. The last element is the
// current state.
type History []State

func (h History) Current() State {
	return h[len(h)-1]
}

// Previous returns the state one step before the current one.
func (h History) Previous() (State, bool) {
	if len(h) < 2 {
		return State{}, false
	}
	return h[len(h)-2], true
}

// Accelerator derives accelerations from a state.
type Accelerator interface {
	Acceleration(s State) (Coords, error)
}

type Integrator interface {
	Name() string
	Step(acc Accelerator, h History, dt float64) (State, error)
}

type Metric interface {
	Name() string
	Observe(s State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s State, step int, t float64)
}
