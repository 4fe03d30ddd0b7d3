// Package experiment turns a scenario config into a ready-to-run simulator.
package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/metrics"
	"github.com/san-kum/lagrangian/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
	logger    *zap.Logger
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) {
		if r != nil {
			e.registry = r
		}
	}
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup validates the config, builds the system for its scenario and
// attaches the default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	scenario, err := e.registry.GetScenario(e.cfg.Scenario)
	if err != nil {
		return err
	}

	layout, err := scenario.Layout(e.cfg)
	if err != nil {
		return fmt.Errorf("%s layout: %w", e.cfg.Scenario, err)
	}

	w := e.cfg.World
	sys, err := sim.NewSystem(sim.Config{
		Positions:    layout.Positions,
		Velocities:   layout.Velocities,
		Masses:       layout.Masses,
		Dt:           e.cfg.Dt,
		Integrator:   e.cfg.Integrator,
		XLim:         w.XLim,
		YLim:         w.YLim,
		CellDx:       w.CellSize,
		CellDy:       w.CellSize,
		Restitution:  w.Restitution,
		RefreshEvery: w.RefreshEvery,
		Workers:      w.Workers,
	}, sim.WithLogger(e.logger.With(zap.String("scenario", e.cfg.Scenario))))
	if err != nil {
		return err
	}

	if err := scenario.Wire(e.cfg, sys); err != nil {
		return fmt.Errorf("%s: %w", e.cfg.Scenario, err)
	}

	e.simulator = sim.New(sys)
	for _, m := range e.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

// DefaultMetrics measures energy against whatever neighbor snapshot the
// simulator holds at observation time. A state counts as unstable once any
// particle is faster than world.max_speed.
func (e *Experiment) DefaultMetrics() []dynamo.Metric {
	energy := func(x dynamo.State) (float64, error) {
		en, err := e.simulator.Solver().Energy(x)
		if err != nil {
			return 0, err
		}
		return en.Total(), nil
	}
	return []dynamo.Metric{
		metrics.NewEnergy(energy),
		metrics.NewEnergyDrift(energy),
		metrics.NewConstraintViolation(e.simulator.System().Constraints()),
		metrics.NewStability(e.cfg.World.MaxSpeed),
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Duration)
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
