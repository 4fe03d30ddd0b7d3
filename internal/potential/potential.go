// Package potential wraps scalar energy and constraint functions of named
// coordinates together with their finite-difference gradients.
package potential

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/diff"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// term is the shape shared by potentials and constraints: a function of an
// ordered list of named coordinates plus fixed parameters.
type term struct {
	fn     diff.Func
	coords []string
	index  map[string]int
	params diff.Params
	grad   *Gradient
}

func newTerm(fn diff.Func, coords []string, params diff.Params) (*term, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil function", dynamo.ErrInvalidConfig)
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: no coordinates", dynamo.ErrInvalidConfig)
	}

	index := make(map[string]int, len(coords))
	for i, c := range coords {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate coordinate %q", dynamo.ErrInvalidConfig, c)
		}
		index[c] = i
	}

	t := &term{
		fn:     fn,
		coords: append([]string(nil), coords...),
		index:  index,
		params: params.Clone(),
	}
	t.grad = &Gradient{t: t}
	return t, nil
}

// args gathers the positional arguments for the term from qs.
func (t *term) args(qs dynamo.Coords) ([]r2.Vec, error) {
	q := make([]r2.Vec, len(t.coords))
	for i, c := range t.coords {
		v, ok := qs[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownCoordinate, c)
		}
		q[i] = v
	}
	return q, nil
}

func (t *term) Coordinates() []string { return t.coords }

func (t *term) Params() diff.Params { return t.params }

// Eval evaluates the wrapped function at qs.
func (t *term) Eval(qs dynamo.Coords) (float64, error) {
	q, err := t.args(qs)
	if err != nil {
		return 0, err
	}
	return t.fn(q, t.params), nil
}

func (t *term) Gradient() *Gradient { return t.grad }

// Gradient evaluates per-coordinate gradients of a potential or constraint.
type Gradient struct {
	t *term
}

// At returns the gradient with respect to the named coordinate at qs.
func (g *Gradient) At(coord string, qs dynamo.Coords) (r2.Vec, error) {
	i, ok := g.t.index[coord]
	if !ok {
		return r2.Vec{}, fmt.Errorf("%w: coordinate %q", dynamo.ErrInvalidIndex, coord)
	}
	q, err := g.t.args(qs)
	if err != nil {
		return r2.Vec{}, err
	}
	return diff.Partial(g.t.fn, diff.Positional(i), q, g.t.params)
}

// All returns the gradient with respect to every coordinate of the term.
func (g *Gradient) All(qs dynamo.Coords) (dynamo.Coords, error) {
	out := make(dynamo.Coords, len(g.t.coords))
	for _, c := range g.t.coords {
		v, err := g.At(c, qs)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}

// Potential is a potential energy U(q) of some coordinates.
type Potential struct {
	*term
}

func NewPotential(fn diff.Func, coords []string, params diff.Params) (*Potential, error) {
	t, err := newTerm(fn, coords, params)
	if err != nil {
		return nil, fmt.Errorf("potential: %w", err)
	}
	return &Potential{term: t}, nil
}

// Constraint is a holonomic constraint F(q) = 0.
type Constraint struct {
	*term
}

func NewConstraint(fn diff.Func, coords []string, params diff.Params) (*Constraint, error) {
	t, err := newTerm(fn, coords, params)
	if err != nil {
		return nil, fmt.Errorf("constraint: %w", err)
	}
	return &Constraint{term: t}, nil
}

// Curvature returns q̇ᵀ H q̇, the second derivative of F along the velocity:
// d²/ds² F(q + s·q̇) at s = 0.
func (c *Constraint) Curvature(qs, qdots dynamo.Coords) (float64, error) {
	q, err := c.args(qs)
	if err != nil {
		return 0, err
	}
	v, err := c.args(qdots)
	if err != nil {
		return 0, err
	}

	moved := make([]r2.Vec, len(q))
	along := func(s float64) float64 {
		for i := range q {
			moved[i] = r2.Add(q[i], r2.Scale(s, v[i]))
		}
		return c.fn(moved, c.params)
	}
	return diff.SecondDerivative(along, 0)
}

// PairFunc is a symmetric interaction energy V(q, p).
type PairFunc func(q, p r2.Vec, params diff.Params) float64

// PairPotential applies a symmetric two-body energy to every neighbor pair.
type PairPotential struct {
	fn     diff.Func
	params diff.Params
}

func NewPairPotential(fn PairFunc, params diff.Params) (*PairPotential, error) {
	if fn == nil {
		return nil, fmt.Errorf("pair potential: %w: nil function", dynamo.ErrInvalidConfig)
	}
	return &PairPotential{
		fn: func(q []r2.Vec, p diff.Params) float64 {
			return fn(q[0], q[1], p)
		},
		params: params.Clone(),
	}, nil
}

func (pp *PairPotential) Eval(q, p r2.Vec) float64 {
	return pp.fn([]r2.Vec{q, p}, pp.params)
}

// Gradient returns the gradient of V with respect to its first argument.
func (pp *PairPotential) Gradient(q, p r2.Vec) (r2.Vec, error) {
	return diff.Partial(pp.fn, diff.Positional(0), []r2.Vec{q, p}, pp.params)
}
