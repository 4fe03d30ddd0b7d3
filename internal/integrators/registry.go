package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler":               func() dynamo.Integrator { return NewEuler() },
	"semi-implicit-euler": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"midpoint":            func() dynamo.Integrator { return NewMidpoint() },
	"ssprk3":              func() dynamo.Integrator { return NewSSPRK3() },
	"rk4":                 func() dynamo.Integrator { return NewRK4() },
	"verlet":              func() dynamo.Integrator { return NewVerlet() },
	"verlet-corrected":    func() dynamo.Integrator { return NewVerletCorrected() },
}

var aliases = map[string]string{
	"forward euler":       "euler",
	"forward-euler":       "euler",
	"semi-implicit euler": "semi-implicit-euler",
	"symplectic-euler":    "semi-implicit-euler",
	"midpoint rule":       "midpoint",
	"rk45":                "rk4",
}

// Lookup returns a fresh integrator for name. Names are case-insensitive and
// the historical long names are accepted as aliases.
func Lookup(name string) (dynamo.Integrator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliases[key]; ok {
		key = canon
	}
	build, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", dynamo.ErrUnknownIntegrator, name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

// Names lists the canonical integrator names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
