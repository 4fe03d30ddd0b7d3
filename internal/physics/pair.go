package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/diff"
)

// LennardJones is ε((σ/d)¹² - 2(σ/d)⁶) + charge/d, with its minimum -ε at
// d = σ. It is symmetric in q and p.
func LennardJones(q, p r2.Vec, params diff.Params) float64 {
	d := r2.Norm(r2.Sub(q, p))
	sigma := params.Get(Sigma, 1)
	s6 := math.Pow(sigma/d, 6)
	return params.Get(Epsilon, 1)*(s6*s6-2*s6) + params[Charge]/d
}
