package metrics

import (
	"math"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/potential"
)

// ConstraintViolation tracks the largest |F(q)| over all constraints.
type ConstraintViolation struct {
	name        string
	constraints []*potential.Constraint
	worst       float64
}

func NewConstraintViolation(cs []*potential.Constraint) *ConstraintViolation {
	return &ConstraintViolation{
		name:        "constraint_violation",
		constraints: cs,
	}
}

func (c *ConstraintViolation) Name() string {
	return c.name
}

func (c *ConstraintViolation) Observe(x dynamo.State, t float64) {
	for _, con := range c.constraints {
		v, err := con.Eval(x.Qs)
		if err != nil {
			continue
		}
		c.worst = math.Max(c.worst, math.Abs(v))
	}
}

func (c *ConstraintViolation) Value() float64 {
	return c.worst
}

func (c *ConstraintViolation) Reset() {
	c.worst = 0
}
