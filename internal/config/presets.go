package config

import (
	"math"
	"sort"
)

// baselines adjust the defaults for scenarios whose scale differs from
// the rest.
var baselines = map[string]func(c *Config){
	"rod": func(c *Config) {
		c.Bodies.Count = 2
	},
	"planets": func(c *Config) {
		c.Integrator = "ssprk3"
		c.Dt = 1.0 / 32
		c.Bodies.Count = 3
		c.Bodies.Spacing = 372
		c.Forces.Gravity = 0
		c.Forces.NewtonG = 16
		c.World.XLim = [2]float64{-400, 400}
		c.World.YLim = [2]float64{-400, 400}
		c.World.CellSize = 50
		c.World.MaxSpeed = 500
	},
}

// ForScenario returns the defaults for a scenario.
func ForScenario(scenario string) *Config {
	c := DefaultConfig()
	c.Scenario = scenario
	if base, ok := baselines[scenario]; ok {
		base(c)
	}
	return c
}

func preset(scenario string, edit func(c *Config)) *Config {
	c := ForScenario(scenario)
	edit(c)
	return c
}

// Presets are keyed by scenario, then by variant.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": preset("pendulum", func(c *Config) {
			c.Bodies.Angle = 0.2
		}),
		"chain": preset("pendulum", func(c *Config) {
			c.Bodies.Count = 3
			c.Bodies.Angle = 1.0
			c.Duration = 20
		}),
		"spinning": preset("pendulum", func(c *Config) {
			c.Bodies.Angle = 0.1
			c.Bodies.Speed = 8
			c.Integrator = "rk4"
		}),
	},
	"rod": {
		"tumble": preset("rod", func(c *Config) {
			c.Bodies.Speed = 3
			c.World.Restitution = 0.8
		}),
		"spin": preset("rod", func(c *Config) {
			c.Bodies.Speed = 2
			c.Forces.Gravity = 0
		}),
	},
	"springs": {
		"ladder": preset("springs", func(c *Config) {
			c.Integrator = "verlet"
			c.Bodies.Count = 6
			c.Bodies.Mass = 0.2
			c.Bodies.Spacing = 1
			c.Forces.Gravity = 0
			c.Forces.Stiffness = 20
			c.World.YLim = [2]float64{-1, 2.8}
		}),
	},
	"band": {
		"sag": preset("band", func(c *Config) {
			c.Duration = 5
			c.Bodies.Count = 30
			c.Bodies.Mass = 1.0 / 3
			c.Bodies.Spacing = 1.0 / 30
			c.Forces.Stiffness = 200
		}),
	},
	"frame": {
		"square": preset("frame", func(c *Config) {
			c.Bodies.Count = 4
			c.Bodies.Spacing = 1
			c.Bodies.Angle = math.Pi / 4
			c.Forces.Stiffness = 200
			c.Forces.Bending = 400
			c.World.XLim = [2]float64{-5, 5}
			c.World.YLim = [2]float64{-5, 5}
			c.World.Restitution = 0.6
		}),
		"triangle": preset("frame", func(c *Config) {
			c.Bodies.Count = 3
			c.Bodies.Spacing = 1.5
			c.Forces.Stiffness = 200
			c.Forces.Bending = 100
			c.World.Restitution = 0.8
		}),
	},
	"planets": {
		"sun-earth-moon": preset("planets", func(c *Config) {}),
		"wide": preset("planets", func(c *Config) {
			c.Bodies.Spacing = 300
			c.Duration = 30
		}),
	},
	"splash": {
		"drop": preset("splash", func(c *Config) {
			c.Integrator = "midpoint"
			c.Dt = 1.0 / 512
			c.Duration = 5
			c.Bodies.Count = 10
			c.Bodies.Mass = 2
			c.World.CellSize = 2
			c.World.Restitution = 0.6
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, name string) *Config {
	variants, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := variants[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scenario string) []string {
	variants, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListScenarios() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
