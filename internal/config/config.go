// Package config loads and validates YAML scenario files.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/integrators"
)

const (
	DefaultDt           = 1.0 / 60
	DefaultDuration     = 10.0
	DefaultGravity      = 9.8
	DefaultStiffness    = 100.0
	DefaultRefreshEvery = 5
	DefaultMaxSpeed     = 50.0
)

type Config struct {
	Scenario   string      `yaml:"scenario"`
	Integrator string      `yaml:"integrator"`
	Dt         float64     `yaml:"dt"`
	Duration   float64     `yaml:"duration"`
	Bodies     BodyConfig  `yaml:"bodies"`
	Forces     ForceConfig `yaml:"forces"`
	World      WorldConfig `yaml:"world"`
	Log        LogConfig   `yaml:"log"`
}

// BodyConfig shapes the initial layout. How each field is read depends on
// the scenario.
type BodyConfig struct {
	Count   int     `yaml:"count"`
	Mass    float64 `yaml:"mass"`
	Spacing float64 `yaml:"spacing"`
	Angle   float64 `yaml:"angle"`
	Speed   float64 `yaml:"speed"`
}

type ForceConfig struct {
	Gravity   float64 `yaml:"gravity"`
	Stiffness float64 `yaml:"stiffness"`
	Bending   float64 `yaml:"bending"`
	Epsilon   float64 `yaml:"epsilon"`
	Sigma     float64 `yaml:"sigma"`
	Charge    float64 `yaml:"charge"`
	NewtonG   float64 `yaml:"newton_g"`
}

type WorldConfig struct {
	XLim         [2]float64 `yaml:"xlim"`
	YLim         [2]float64 `yaml:"ylim"`
	CellSize     float64    `yaml:"cell_size"`
	Restitution  float64    `yaml:"restitution"`
	RefreshEvery int        `yaml:"refresh_every"`
	MaxSpeed     float64    `yaml:"max_speed"`
	Workers      int        `yaml:"workers"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   "pendulum",
		Integrator: "ssprk3",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Bodies: BodyConfig{
			Count:   1,
			Mass:    1,
			Spacing: 1,
			Angle:   0.5,
		},
		Forces: ForceConfig{
			Gravity:   DefaultGravity,
			Stiffness: DefaultStiffness,
			Epsilon:   1,
			Sigma:     1,
		},
		World: WorldConfig{
			XLim:         [2]float64{-10, 10},
			YLim:         [2]float64{-10, 10},
			CellSize:     1,
			Restitution:  1,
			RefreshEvery: DefaultRefreshEvery,
			MaxSpeed:     DefaultMaxSpeed,
			Workers:      1,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load reads a scenario file over the defaults for its scenario and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		Scenario string `yaml:"scenario"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg := DefaultConfig()
	if head.Scenario != "" {
		cfg = ForScenario(head.Scenario)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks required fields and sane values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scenario) == "" {
		return invalid("scenario is required")
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return fmt.Errorf("integrator: %w", err)
	}
	if !(c.Dt > 0) {
		return invalid("dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		return invalid("duration must be positive, got %g", c.Duration)
	}
	if c.Bodies.Count < 1 {
		return invalid("bodies.count must be at least 1, got %d", c.Bodies.Count)
	}
	if !(c.Bodies.Mass > 0) {
		return invalid("bodies.mass must be positive, got %g", c.Bodies.Mass)
	}
	if !(c.Bodies.Spacing > 0) {
		return invalid("bodies.spacing must be positive, got %g", c.Bodies.Spacing)
	}
	if c.Forces.Stiffness < 0 || c.Forces.Bending < 0 {
		return invalid("forces.stiffness and forces.bending must not be negative")
	}
	if c.Forces.NewtonG < 0 {
		return invalid("forces.newton_g must not be negative, got %g", c.Forces.NewtonG)
	}
	if !(c.World.XLim[1] > c.World.XLim[0]) || !(c.World.YLim[1] > c.World.YLim[0]) {
		return invalid("world.xlim and world.ylim must be increasing, got %v %v", c.World.XLim, c.World.YLim)
	}
	if !(c.World.CellSize > 0) {
		return invalid("world.cell_size must be positive, got %g", c.World.CellSize)
	}
	if c.World.Restitution < 0 || c.World.Restitution > 1 {
		return invalid("world.restitution must be between 0 and 1, got %g", c.World.Restitution)
	}
	if c.World.RefreshEvery < 1 {
		return invalid("world.refresh_every must be a positive integer")
	}
	if !(c.World.MaxSpeed > 0) {
		return invalid("world.max_speed must be positive, got %g", c.World.MaxSpeed)
	}
	if c.World.Workers < 1 {
		return invalid("world.workers must be a positive integer")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return invalid("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
