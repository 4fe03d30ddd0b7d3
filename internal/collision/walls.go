// Package collision reflects particles off the walls of an axis-aligned box.
package collision

import (
	"fmt"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultInset is how far inside a wall a clamped particle is placed.
const DefaultInset = 1e-4

// Box is an axis-aligned rectangle [Min.X, Max.X] × [Min.Y, Max.Y].
type Box struct {
	Min, Max r2.Vec
}

func NewBox(xlim, ylim [2]float64) Box {
	return Box{
		Min: r2.Vec{X: xlim[0], Y: ylim[0]},
		Max: r2.Vec{X: xlim[1], Y: ylim[1]},
	}
}

type Walls struct {
	Box         Box
	Restitution float64
	Inset       float64
}

func NewWalls(box Box, restitution float64) (*Walls, error) {
	w := &Walls{Box: box, Restitution: restitution, Inset: DefaultInset}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Walls) Validate() error {
	if w.Restitution < 0 || w.Restitution > 1 {
		return fmt.Errorf("%w: restitution %g outside [0, 1]", dynamo.ErrInvalidConfig, w.Restitution)
	}
	if w.Inset < 0 {
		return fmt.Errorf("%w: negative wall inset %g", dynamo.ErrInvalidConfig, w.Inset)
	}
	if !(w.Box.Max.X-w.Box.Min.X > 2*w.Inset) || !(w.Box.Max.Y-w.Box.Min.Y > 2*w.Inset) {
		return fmt.Errorf("%w: box %v is too small", dynamo.ErrInvalidConfig, w.Box)
	}
	return nil
}

// Resolve returns s with every particle outside the box clamped just inside
// the wall it crossed. A velocity component is reversed and scaled by the
// restitution only while it still points outward. Resolving an already
// resolved state changes nothing.
func (w *Walls) Resolve(s dynamo.State) dynamo.State {
	out := s.Clone()
	for id, q := range s.Qs {
		v := s.QDots[id]
		q.X, v.X = w.axis(q.X, v.X, w.Box.Min.X, w.Box.Max.X)
		q.Y, v.Y = w.axis(q.Y, v.Y, w.Box.Min.Y, w.Box.Max.Y)
		out.Qs[id] = q
		if _, ok := out.QDots[id]; ok {
			out.QDots[id] = v
		}
	}
	return out
}

func (w *Walls) axis(x, v, lo, hi float64) (float64, float64) {
	switch {
	case x < lo:
		x = lo + w.Inset
		if v < 0 {
			v = -w.Restitution * v
		}
	case x > hi:
		x = hi - w.Inset
		if v > 0 {
			v = -w.Restitution * v
		}
	}
	return x, v
}

// Rebound returns prev with each axis mirrored through the resolved
// position wherever Resolve clamped an outward move of raw, scaled by the
// restitution. Position-only integrators read velocity as the displacement
// from prev, so this makes them bounce instead of sticking to the wall.
func (w *Walls) Rebound(prev, raw, resolved dynamo.State) dynamo.State {
	out := prev.Clone()
	for id, p := range prev.Qs {
		r, ok := raw.Qs[id]
		if !ok {
			continue
		}
		q := resolved.Qs[id]
		p.X = w.rebound(p.X, r.X, q.X)
		p.Y = w.rebound(p.Y, r.Y, q.Y)
		out.Qs[id] = p
	}
	return out
}

func (w *Walls) rebound(p, r, q float64) float64 {
	d := r - p
	if (r > q && d > 0) || (r < q && d < 0) {
		return q + w.Restitution*d
	}
	return p
}
