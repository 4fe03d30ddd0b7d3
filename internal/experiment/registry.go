package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/sim"
)

// Layout is the initial placement of a scenario's particles.
type Layout struct {
	Positions  dynamo.Coords
	Velocities dynamo.Coords
	Masses     map[string]float64
}

// Scenario lays out particles from a config and then registers the
// potentials, pair potentials and constraints acting on them.
type Scenario struct {
	Layout func(c *config.Config) (Layout, error)
	Wire   func(c *config.Config, sys *sim.System) error
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.scenarios["pendulum"] = Scenario{Layout: pendulumLayout, Wire: wirePendulum}
	r.scenarios["rod"] = Scenario{Layout: rodLayout, Wire: wireRod}
	r.scenarios["springs"] = Scenario{Layout: springsLayout, Wire: wireSprings}
	r.scenarios["band"] = Scenario{Layout: bandLayout, Wire: wireBand}
	r.scenarios["frame"] = Scenario{Layout: frameLayout, Wire: wireFrame}
	r.scenarios["planets"] = Scenario{Layout: planetsLayout, Wire: wirePlanets}
	r.scenarios["splash"] = Scenario{Layout: splashLayout, Wire: wireSplash}

	return r
}

// Register adds or replaces a scenario.
func (r *Registry) Register(name string, s Scenario) {
	r.scenarios[name] = s
}

func (r *Registry) GetScenario(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: unknown scenario %q", dynamo.ErrInvalidConfig, name)
	}
	return s, nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
