package sim

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/celllists"
	"github.com/san-kum/lagrangian/internal/dynamo"
)

// Solver computes forces and accelerations for one system against a fixed
// neighbor snapshot.
type Solver struct {
	sys       *System
	neighbors celllists.NeighborLists
}

func NewSolver(sys *System, neighbors celllists.NeighborLists) *Solver {
	return &Solver{sys: sys, neighbors: neighbors}
}

func (s *Solver) Neighbors() celllists.NeighborLists { return s.neighbors }

// Forces returns the net force on every coordinate referenced by a
// potential or constraint, and on every particle when pair potentials exist.
func (s *Solver) Forces(x dynamo.State) (dynamo.Coords, error) {
	force, err := s.potentialForces(x.Qs)
	if err != nil {
		return nil, err
	}
	if err := s.addPairForces(force, x.Qs); err != nil {
		return nil, err
	}
	if err := s.addConstraintForces(force, x); err != nil {
		return nil, err
	}
	return force, nil
}

// Acceleration returns force/mass for every particle, zero where no force
// acts.
func (s *Solver) Acceleration(x dynamo.State) (dynamo.Coords, error) {
	force, err := s.Forces(x)
	if err != nil {
		return nil, err
	}
	acc := dynamo.ZeroCoords(x.Qs.Keys())
	for id, f := range force {
		acc[id] = r2.Scale(1/s.sys.masses[id], f)
	}
	return acc, nil
}

func (s *Solver) potentialForces(qs dynamo.Coords) (dynamo.Coords, error) {
	pots := s.sys.potentials
	parts := make([]dynamo.Coords, len(pots))

	if s.sys.cfg.Workers > 1 && len(pots) > 1 {
		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(s.sys.cfg.Workers)
		for i, p := range pots {
			i, p := i, p
			g.Go(func() error {
				grad, err := p.Gradient().All(qs)
				if err != nil {
					return fmt.Errorf("potential %d: %w", i, err)
				}
				parts[i] = grad
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, p := range pots {
			grad, err := p.Gradient().All(qs)
			if err != nil {
				return nil, fmt.Errorf("potential %d: %w", i, err)
			}
			parts[i] = grad
		}
	}

	// Fold in registration order so the parallel path sums identically.
	force := make(dynamo.Coords)
	for i, p := range pots {
		for _, c := range p.Coordinates() {
			force[c] = r2.Sub(force[c], parts[i][c])
		}
	}
	return force, nil
}

func (s *Solver) addPairForces(force dynamo.Coords, qs dynamo.Coords) error {
	if !s.sys.HasPairs() {
		return nil
	}
	for id := range qs {
		if _, ok := force[id]; !ok {
			force[id] = r2.Vec{}
		}
	}

	for _, q := range qs.Keys() {
		for _, p := range s.neighbors[q] {
			qp, ok := qs[p]
			if !ok {
				return fmt.Errorf("neighbor %w: %q", dynamo.ErrUnknownCoordinate, p)
			}
			for _, pp := range s.sys.pairs {
				g, err := pp.Gradient(qs[q], qp)
				if err != nil {
					return fmt.Errorf("pair %s-%s: %w", q, p, err)
				}
				force[q] = r2.Sub(force[q], g)
				force[p] = r2.Add(force[p], g)
			}
		}
	}
	return nil
}

// addConstraintForces solves for the Lagrange multipliers that keep the
// second time derivative of every constraint at zero, given the applied
// forces already in force, and adds the reaction Σ λ_k ∇F_k.
func (s *Solver) addConstraintForces(force dynamo.Coords, x dynamo.State) error {
	cons := s.sys.constraints
	n := len(cons)
	if n == 0 {
		return nil
	}

	grads := make([]dynamo.Coords, n)
	b := make([]float64, n)
	for k, c := range cons {
		g, err := c.Gradient().All(x.Qs)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", k, err)
		}
		grads[k] = g

		curv, err := c.Curvature(x.Qs, x.QDots)
		if err != nil {
			return fmt.Errorf("constraint %d curvature: %w", k, err)
		}
		b[k] = -curv
		for _, id := range c.Coordinates() {
			b[k] -= r2.Dot(g[id], force[id]) / s.sys.masses[id]
		}
	}

	a := mat.NewDense(n, n, nil)
	for k := 0; k < n; k++ {
		for j := k; j < n; j++ {
			var sum float64
			for _, id := range cons[k].Coordinates() {
				if gj, ok := grads[j][id]; ok {
					sum += r2.Dot(grads[k][id], gj) / s.sys.masses[id]
				}
			}
			a.Set(k, j, sum)
			a.Set(j, k, sum)
		}
	}

	var lambda mat.VecDense
	if err := lambda.SolveVec(a, mat.NewVecDense(n, b)); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrUnsolvableConstraints, err)
	}
	for k := 0; k < n; k++ {
		l := lambda.AtVec(k)
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return fmt.Errorf("%w: multiplier %d is %g", dynamo.ErrUnsolvableConstraints, k, l)
		}
		for id, g := range grads[k] {
			force[id] = r2.Add(force[id], r2.Scale(l, g))
		}
	}
	return nil
}
