package experiment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/diff"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/physics"
	"github.com/san-kum/lagrangian/internal/sim"
)

// golden is the sunflower divergence angle 2π/φ.
var golden = 2 * math.Pi / ((1 + math.Sqrt(5)) / 2)

func newLayout() Layout {
	return Layout{
		Positions:  dynamo.Coords{},
		Velocities: dynamo.Coords{},
		Masses:     map[string]float64{},
	}
}

func (l Layout) put(id string, q, v r2.Vec, m float64) {
	l.Positions[id] = q
	l.Velocities[id] = v
	l.Masses[id] = m
}

func names(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return ids
}

// addGravity pulls every listed particle down with its own mass.
func addGravity(c *config.Config, sys *sim.System, ids []string) error {
	if c.Forces.Gravity == 0 {
		return nil
	}
	ms := make([]float64, len(ids))
	for i, id := range ids {
		ms[i] = sys.Mass(id)
	}
	return sys.AddPotential(physics.Gravity(ms), ids, diff.Params{physics.FieldG: c.Forces.Gravity})
}

// A chain of rods hanging from the origin, released at an angle from the
// vertical and spinning at the given tip speed.
func pendulumLayout(c *config.Config) (Layout, error) {
	l := newLayout()
	b := c.Bodies
	dir := r2.Vec{X: math.Sin(b.Angle), Y: -math.Cos(b.Angle)}
	tangent := r2.Vec{X: math.Cos(b.Angle), Y: math.Sin(b.Angle)}
	omega := b.Speed / (float64(b.Count) * b.Spacing)

	for i, id := range names("bob", b.Count) {
		r := float64(i+1) * b.Spacing
		l.put(id, r2.Scale(r, dir), r2.Scale(omega*r, tangent), b.Mass)
	}
	return l, nil
}

func wirePendulum(c *config.Config, sys *sim.System) error {
	ids := names("bob", c.Bodies.Count)
	l := c.Bodies.Spacing
	if err := sys.AddConstraint(physics.Pin, ids[:1], diff.Params{physics.RestLength: l}); err != nil {
		return err
	}
	for i := 1; i < len(ids); i++ {
		if err := sys.AddConstraint(physics.Distance, ids[i-1:i+1], diff.Params{physics.RestLength: l}); err != nil {
			return err
		}
	}
	return addGravity(c, sys, ids)
}

// Two bodies joined by a rigid rod, spinning about their midpoint. The body
// count is ignored.
func rodLayout(c *config.Config) (Layout, error) {
	b := c.Bodies
	l := newLayout()
	half := b.Spacing / 2
	l.put("a", r2.Vec{X: -half, Y: 2}, r2.Vec{Y: -b.Speed}, b.Mass)
	l.put("b", r2.Vec{X: half, Y: 2}, r2.Vec{Y: b.Speed}, b.Mass)
	return l, nil
}

func wireRod(c *config.Config, sys *sim.System) error {
	ids := []string{"a", "b"}
	if err := sys.AddConstraint(physics.Distance, ids, diff.Params{physics.RestLength: c.Bodies.Spacing}); err != nil {
		return err
	}
	return addGravity(c, sys, ids)
}

// Count springs stacked vertically. Spring i starts at 4·2⁻ⁱ rest lengths
// long, so the upper ones start compressed.
func springsLayout(c *config.Config) (Layout, error) {
	l := newLayout()
	b := c.Bodies
	for i := 0; i < b.Count; i++ {
		x := 2 * b.Spacing * math.Pow(2, -float64(i))
		y := 0.3*float64(i) - 1e-4
		l.put(fmt.Sprintf("left%02d", i), r2.Vec{X: -x, Y: y}, r2.Vec{}, b.Mass)
		l.put(fmt.Sprintf("right%02d", i), r2.Vec{X: x, Y: y}, r2.Vec{}, b.Mass)
	}
	return l, nil
}

func wireSprings(c *config.Config, sys *sim.System) error {
	var all []string
	for i := 0; i < c.Bodies.Count; i++ {
		pair := []string{fmt.Sprintf("left%02d", i), fmt.Sprintf("right%02d", i)}
		err := sys.AddPotential(physics.Spring, pair, diff.Params{
			physics.Stiffness:  c.Forces.Stiffness,
			physics.RestLength: c.Bodies.Spacing,
		})
		if err != nil {
			return err
		}
		all = append(all, pair...)
	}
	return addGravity(c, sys, all)
}

// An elastic band laid out along the x axis with both ends tied to their
// starting points. Body mass is spread evenly over the band.
func bandLayout(c *config.Config) (Layout, error) {
	b := c.Bodies
	if b.Count < 2 {
		return Layout{}, fmt.Errorf("%w: band needs at least 2 bodies, got %d", dynamo.ErrInvalidConfig, b.Count)
	}
	l := newLayout()
	for i, id := range names("q", b.Count) {
		l.put(id, r2.Vec{X: float64(i) * b.Spacing}, r2.Vec{}, b.Mass)
	}
	return l, nil
}

func wireBand(c *config.Config, sys *sim.System) error {
	ids := names("q", c.Bodies.Count)
	k := c.Forces.Stiffness
	for _, end := range []string{ids[0], ids[len(ids)-1]} {
		at := sys.Initial().Qs[end]
		err := sys.AddPotential(physics.Anchor, []string{end}, diff.Params{
			physics.Stiffness: k,
			physics.AnchorX:   at.X,
			physics.AnchorY:   at.Y,
		})
		if err != nil {
			return err
		}
	}
	for i := 1; i < len(ids); i++ {
		err := sys.AddPotential(physics.Spring, ids[i-1:i+1], diff.Params{
			physics.Stiffness:  k,
			physics.RestLength: c.Bodies.Spacing,
		})
		if err != nil {
			return err
		}
	}
	return addGravity(c, sys, ids)
}

// A regular polygon of springs, stiffened at every corner by an angle
// spring, dropped from the origin.
func frameLayout(c *config.Config) (Layout, error) {
	b := c.Bodies
	if b.Count < 3 {
		return Layout{}, fmt.Errorf("%w: frame needs at least 3 corners, got %d", dynamo.ErrInvalidConfig, b.Count)
	}
	l := newLayout()
	step := 2 * math.Pi / float64(b.Count)
	for i, id := range names("corner", b.Count) {
		a := b.Angle + float64(i)*step
		l.put(id, r2.Vec{X: b.Spacing * math.Cos(a), Y: b.Spacing * math.Sin(a)}, r2.Vec{}, b.Mass)
	}
	return l, nil
}

func wireFrame(c *config.Config, sys *sim.System) error {
	ids := names("corner", c.Bodies.Count)
	n := len(ids)
	side := 2 * c.Bodies.Spacing * math.Sin(math.Pi/float64(n))
	interior := math.Pi - 2*math.Pi/float64(n)

	for i, id := range ids {
		next := ids[(i+1)%n]
		prev := ids[(i+n-1)%n]
		err := sys.AddPotential(physics.Spring, []string{id, next}, diff.Params{
			physics.Stiffness:  c.Forces.Stiffness,
			physics.RestLength: side,
		})
		if err != nil {
			return err
		}
		if c.Forces.Bending == 0 {
			continue
		}
		err = sys.AddPotential(physics.AngleSpring, []string{id, prev, next}, diff.Params{
			physics.Stiffness: c.Forces.Bending,
			physics.RestAngle: interior,
		})
		if err != nil {
			return err
		}
	}
	return addGravity(c, sys, ids)
}

// Mass ratios and the moon's distance from the earth in the planets
// scenario. The earth has the configured body mass.
const (
	sunMass      = 330_000
	moonMass     = 0.25
	moonDistance = 1.0
)

// orbitSpeed is the speed of a circular orbit at distance d around mass m.
func orbitSpeed(g, m, d float64) float64 {
	return math.Sqrt(g * m / d)
}

// A sun at the origin with an earth on a circular orbit at bodies.spacing
// and a moon circling the earth. The body count is ignored.
func planetsLayout(c *config.Config) (Layout, error) {
	b := c.Bodies
	g := c.Forces.NewtonG
	l := newLayout()

	mSun, mEarth, mMoon := sunMass*b.Mass, b.Mass, moonMass*b.Mass
	vEarth := orbitSpeed(g, mSun, b.Spacing)
	vMoon := orbitSpeed(g, mEarth, moonDistance)

	l.put("sun", r2.Vec{}, r2.Vec{}, mSun)
	l.put("earth", r2.Vec{X: b.Spacing}, r2.Vec{Y: vEarth}, mEarth)
	l.put("moon", r2.Vec{X: b.Spacing + moonDistance}, r2.Vec{Y: vEarth + vMoon}, mMoon)
	return l, nil
}

// wirePlanets attracts every pair of bodies. Uniform gravity is not used.
func wirePlanets(c *config.Config, sys *sim.System) error {
	ids := []string{"sun", "earth", "moon"}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			err := sys.AddPotential(physics.NewtonGravity, []string{ids[i], ids[j]}, diff.Params{
				physics.BigG:  c.Forces.NewtonG,
				physics.Mass1: sys.Mass(ids[i]),
				physics.Mass2: sys.Mass(ids[j]),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// A droplet of Lennard-Jones particles on a sunflower spiral, released
// off-center so it splashes against the walls.
func splashLayout(c *config.Config) (Layout, error) {
	l := newLayout()
	b := c.Bodies
	offset := r2.Vec{X: 2, Y: -1e-4}
	for n, id := range names("p", b.Count) {
		r := b.Spacing * math.Sqrt(float64(n))
		a := float64(n) * golden
		q := r2.Add(offset, r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)})
		l.put(id, q, r2.Vec{}, b.Mass)
	}
	return l, nil
}

func wireSplash(c *config.Config, sys *sim.System) error {
	err := sys.AddPairPotential(physics.LennardJones, diff.Params{
		physics.Epsilon: c.Forces.Epsilon,
		physics.Sigma:   c.Forces.Sigma,
		physics.Charge:  c.Forces.Charge,
	})
	if err != nil {
		return err
	}
	return addGravity(c, sys, names("p", c.Bodies.Count))
}
