package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

type Energy struct {
	Kinetic   float64
	Potential float64
}

func (e Energy) Total() float64 { return e.Kinetic + e.Potential }

// Energy sums ½mv² over all particles and every registered potential,
// including pair potentials over the current neighbor snapshot.
func (s *Solver) Energy(x dynamo.State) (Energy, error) {
	var e Energy
	for _, id := range x.QDots.Keys() {
		e.Kinetic += 0.5 * s.sys.masses[id] * r2.Norm2(x.QDots[id])
	}

	for i, p := range s.sys.potentials {
		u, err := p.Eval(x.Qs)
		if err != nil {
			return Energy{}, fmt.Errorf("potential %d: %w", i, err)
		}
		e.Potential += u
	}

	if s.sys.HasPairs() {
		for _, q := range x.Qs.Keys() {
			for _, p := range s.neighbors[q] {
				for _, pp := range s.sys.pairs {
					e.Potential += pp.Eval(x.Qs[q], x.Qs[p])
				}
			}
		}
	}
	return e, nil
}
