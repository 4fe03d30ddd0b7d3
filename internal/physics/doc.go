// Package physics provides the energy and constraint functions scenarios
// are built from.
//
// Every term is a [diff.Func] (or [potential.PairFunc]) whose tunable
// constants live in [diff.Params], so they can be differentiated by keyword
// as well as by position:
//
//   - [Gravity]: uniform field, Σ mᵢ g yᵢ
//   - [Spring], [Anchor]: Hookean springs between particles or to a point
//   - [AngleSpring]: bending stiffness at a joint
//   - [NewtonGravity]: inverse-distance attraction between two bodies
//   - [LennardJones]: short-range pair interaction for cell lists
//   - [Distance], [Pin]: holonomic rod constraints
//
// # Example
//
//	err := sys.AddPotential(physics.Spring, []string{"a", "b"},
//	    diff.Params{physics.Stiffness: 10, physics.RestLength: 1})
package physics

// Parameter keys.
const (
	Stiffness  = "k"
	RestLength = "l"
	RestAngle  = "theta0"
	FieldG     = "g"
	BigG       = "G"
	Mass1      = "m1"
	Mass2      = "m2"
	AnchorX    = "x"
	AnchorY    = "y"
	Epsilon    = "epsilon"
	Sigma      = "sigma"
	Charge     = "charge"
)

const (
	DefaultG         = 9.8
	DefaultStiffness = 10.0
)
