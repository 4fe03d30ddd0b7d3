package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/sim"
)

func TestRegistry_CoversPresets(t *testing.T) {
	got := NewRegistry().ListScenarios()
	if diff := cmp.Diff(config.ListScenarios(), got); diff != "" {
		t.Errorf("scenarios mismatch (-presets +registry):\n%s", diff)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := NewRegistry().GetScenario("vortex")
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPresets_BuildAndRun(t *testing.T) {
	for _, scenario := range config.ListScenarios() {
		for _, name := range config.ListPresets(scenario) {
			t.Run(scenario+"/"+name, func(t *testing.T) {
				cfg := config.GetPreset(scenario, name)
				cfg.Duration = 10 * cfg.Dt

				exp := New(cfg)
				if err := exp.Setup(); err != nil {
					t.Fatalf("Setup: %v", err)
				}
				res, err := exp.Run(context.Background())
				if err != nil {
					t.Fatalf("Run: %v", err)
				}

				if want := sim.StepsFor(cfg.Duration, cfg.Dt); res.StepsTaken != want {
					t.Errorf("steps = %d, want %d", res.StepsTaken, want)
				}
				if res.Trajectory.Len() != res.StepsTaken+1 {
					t.Errorf("trajectory has %d states for %d steps", res.Trajectory.Len(), res.StepsTaken)
				}
				for _, m := range []string{"energy", "energy_drift", "constraint_violation", "stability"} {
					if _, ok := res.Metrics[m]; !ok {
						t.Errorf("missing metric %q", m)
					}
				}
				if res.Metrics["stability"] != 1 {
					t.Errorf("stability = %v, want 1", res.Metrics["stability"])
				}
			})
		}
	}
}

func TestPendulum_HoldsRods(t *testing.T) {
	cfg := config.GetPreset("pendulum", "chain")
	cfg.Duration = 1

	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	if n := len(exp.GetSimulator().System().Constraints()); n != 3 {
		t.Fatalf("expected 3 rod constraints, got %d", n)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v := res.Metrics["constraint_violation"]; v > 1e-2 {
		t.Errorf("constraint violation %v too large", v)
	}
	if d := res.Metrics["energy_drift"]; d > 0.05 {
		t.Errorf("energy drift %v too large", d)
	}
}

func TestPendulum_StartsOnItsRods(t *testing.T) {
	cfg := config.GetPreset("pendulum", "spinning")
	layout, err := pendulumLayout(cfg)
	if err != nil {
		t.Fatal(err)
	}
	q, v := layout.Positions["bob00"], layout.Velocities["bob00"]
	if r := r2.Norm(q); r < cfg.Bodies.Spacing-1e-12 || r > cfg.Bodies.Spacing+1e-12 {
		t.Errorf("bob at radius %v, want %v", r, cfg.Bodies.Spacing)
	}
	if d := r2.Dot(q, v); d > 1e-12 || d < -1e-12 {
		t.Errorf("velocity not tangent to the rod: q·v = %v", d)
	}
	if s := r2.Norm(v); s < cfg.Bodies.Speed-1e-9 || s > cfg.Bodies.Speed+1e-9 {
		t.Errorf("tip speed %v, want %v", s, cfg.Bodies.Speed)
	}
}

func TestSplash_UsesPairPotential(t *testing.T) {
	cfg := config.GetPreset("splash", "drop")
	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	sys := exp.GetSimulator().System()
	if !sys.HasPairs() {
		t.Error("splash should register a pair potential")
	}
	if got := exp.GetSimulator().Solver().Neighbors().Pairs(); got == 0 {
		t.Error("expected neighbor pairs in the initial droplet")
	}
}

func TestRod_IgnoresBodyCount(t *testing.T) {
	for _, cfg := range []*config.Config{config.ForScenario("rod"), config.DefaultConfig()} {
		cfg.Scenario = "rod"
		cfg.Duration = 10 * cfg.Dt

		exp := New(cfg)
		if err := exp.Setup(); err != nil {
			t.Fatalf("count %d: %v", cfg.Bodies.Count, err)
		}
		ids := exp.GetSimulator().System().Initial().Qs.Keys()
		if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
			t.Errorf("count %d: bodies (-want +got):\n%s", cfg.Bodies.Count, diff)
		}
	}
}

func TestPlanets_Orbit(t *testing.T) {
	cfg := config.GetPreset("planets", "sun-earth-moon")
	cfg.Duration = 1

	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	sys := exp.GetSimulator().System()
	if sys.HasPairs() {
		t.Error("planets should attract through pairwise potentials, not the pair cell lists")
	}
	if m := sys.Mass("sun"); m != 330_000*cfg.Bodies.Mass {
		t.Errorf("sun mass %v", m)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := res.Trajectory.Last().Qs

	if r := r2.Norm(r2.Sub(last["earth"], last["sun"])); r < 0.99*cfg.Bodies.Spacing || r > 1.01*cfg.Bodies.Spacing {
		t.Errorf("earth orbit radius %v, want about %v", r, cfg.Bodies.Spacing)
	}
	if r := r2.Norm(r2.Sub(last["moon"], last["earth"])); r < 0.8 || r > 1.2 {
		t.Errorf("moon left the earth: distance %v", r)
	}
	if d := res.Metrics["energy_drift"]; d > 1e-3 {
		t.Errorf("energy drift %v too large", d)
	}
	if s := res.Metrics["stability"]; s != 1 {
		t.Errorf("stability = %v, want 1", s)
	}
}

func TestSetup_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *config.Config)
		want error
	}{
		{"frame with two corners", func(c *config.Config) { c.Scenario = "frame"; c.Bodies.Count = 2 }, dynamo.ErrInvalidConfig},
		{"band with one body", func(c *config.Config) { c.Scenario = "band"; c.Bodies.Count = 1 }, dynamo.ErrInvalidConfig},
		{"unknown scenario", func(c *config.Config) { c.Scenario = "vortex" }, dynamo.ErrInvalidConfig},
		{"unknown integrator", func(c *config.Config) { c.Integrator = "leapfrog" }, dynamo.ErrUnknownIntegrator},
		{"pendulum outside the box", func(c *config.Config) { c.Bodies.Spacing = 20 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.edit(cfg)
			err := New(cfg).Setup()
			if tt.want == nil {
				if err != nil {
					t.Errorf("out-of-domain positions should not fail setup: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRun_BeforeSetup(t *testing.T) {
	if _, err := New(config.DefaultConfig()).Run(context.Background()); err == nil {
		t.Error("expected error running an experiment that was never set up")
	}
}

func TestRegister_CustomScenario(t *testing.T) {
	r := NewRegistry()
	r.Register("drop", Scenario{
		Layout: func(c *config.Config) (Layout, error) {
			l := newLayout()
			l.put("ball", r2.Vec{Y: 5}, r2.Vec{}, c.Bodies.Mass)
			return l, nil
		},
		Wire: func(c *config.Config, sys *sim.System) error {
			return addGravity(c, sys, []string{"ball"})
		},
	})

	cfg := config.DefaultConfig()
	cfg.Scenario = "drop"
	cfg.Integrator = "rk4"
	cfg.Duration = 1

	exp := New(cfg, WithRegistry(r))
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	y, err := res.Trajectory.Y("ball", res.StepsTaken)
	if err != nil {
		t.Fatal(err)
	}
	if want := 5 - 0.5*cfg.Forces.Gravity; y < want-1e-6 || y > want+1e-6 {
		t.Errorf("y(1) = %v, want %v", y, want)
	}
	if d := res.Metrics["energy_drift"]; d > 1e-6 {
		t.Errorf("free fall should conserve energy, drift %v", d)
	}
}
