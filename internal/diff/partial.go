package diff

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params are the fixed keyword parameters of an energy function.
type Params map[string]float64

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Get returns p[key] or fallback when the key is absent.
func (p Params) Get(key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

// Func is a scalar function of positional 2D arguments and fixed parameters.
type Func func(q []r2.Vec, p Params) float64

type wrtKind int

const (
	positional wrtKind = iota
	keyword
)

// Wrt names the argument a partial derivative is taken with respect to:
// either a positional coordinate or a keyword parameter.
type Wrt struct {
	kind  wrtKind
	index int
	key   string
}

func Positional(i int) Wrt { return Wrt{kind: positional, index: i} }

func Keyword(key string) Wrt { return Wrt{kind: keyword, key: key} }

func (w Wrt) String() string {
	if w.kind == keyword {
		return fmt.Sprintf("keyword %q", w.key)
	}
	return fmt.Sprintf("positional %d", w.index)
}

// Partial differentiates f with respect to w at (q, p), holding every other
// argument fixed. A positional argument yields its 2D gradient; a keyword
// parameter yields (df/dk, 0).
func Partial(f Func, w Wrt, q []r2.Vec, p Params) (r2.Vec, error) {
	switch w.kind {
	case positional:
		if w.index < 0 || w.index >= len(q) {
			return r2.Vec{}, fmt.Errorf("%w: %s of %d arguments", dynamo.ErrInvalidIndex, w, len(q))
		}
		args := make([]r2.Vec, len(q))
		copy(args, q)
		return Gradient2D(func(v r2.Vec) float64 {
			args[w.index] = v
			return f(args, p)
		}, q[w.index])

	case keyword:
		at, ok := p[w.key]
		if !ok {
			return r2.Vec{}, fmt.Errorf("%w: %s", dynamo.ErrInvalidIndex, w)
		}
		held := p.Clone()
		d, err := Derivative(func(x float64) float64 {
			held[w.key] = x
			return f(q, held)
		}, at)
		return r2.Vec{X: d}, err
	}
	return r2.Vec{}, fmt.Errorf("%w: %s", dynamo.ErrInvalidIndex, w)
}
