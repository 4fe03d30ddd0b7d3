package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/trajectory"
)

type Simulator struct {
	sys       *System
	solver    *Solver
	traj      *trajectory.Trajectory
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	steps     int
	logger    *zap.Logger

	// prev stands in for the previous recorded state once walls have
	// rebounded it.
	prev    dynamo.State
	hasPrev bool
}

type Result struct {
	Trajectory  *trajectory.Trajectory
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
}

// New prepares a run starting from the system's initial state.
func New(sys *System) *Simulator {
	x0 := sys.Initial()
	return &Simulator{
		sys:     sys,
		solver:  NewSolver(sys, sys.Neighbors(x0.Qs)),
		traj:    trajectory.New(x0),
		metrics: make([]dynamo.Metric, 0),
		logger:  sys.Logger(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() *System { return s.sys }

func (s *Simulator) Solver() *Solver { return s.solver }

func (s *Simulator) Trajectory() *trajectory.Trajectory { return s.traj }

// Time is the simulated time of the current state.
func (s *Simulator) Time() float64 { return float64(s.steps) * s.sys.cfg.Dt }

func (s *Simulator) fail(err error) error {
	return &dynamo.SimulationError{Step: s.steps, Time: s.Time(), Wrapped: err}
}

// Step advances one time step and returns the new state. Neighbor lists are
// rebuilt every RefreshEvery steps when pair potentials are registered.
func (s *Simulator) Step(ctx context.Context) (dynamo.State, error) {
	if err := ctx.Err(); err != nil {
		return dynamo.State{}, s.fail(fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err))
	}

	if s.sys.HasPairs() && s.steps > 0 && s.steps%s.sys.cfg.RefreshEvery == 0 {
		nl := s.sys.Neighbors(s.traj.Last().Qs)
		s.solver = NewSolver(s.sys, nl)
		s.logger.Debug("rebuilt neighbor lists", zap.Int("step", s.steps), zap.Int("pairs", nl.Pairs()))
	}

	h := s.traj.History()
	if s.hasPrev && len(h) == 2 {
		h = dynamo.History{s.prev, h[1]}
	}
	raw, err := s.sys.integrator.Step(s.solver, h, s.sys.cfg.Dt)
	if err != nil {
		return dynamo.State{}, s.fail(err)
	}
	next := s.sys.walls.Resolve(raw)
	if !next.IsValid() {
		return dynamo.State{}, s.fail(dynamo.ErrInvalidState)
	}

	s.steps++
	t := s.Time()
	if err := s.traj.Append(next, t); err != nil {
		return dynamo.State{}, s.fail(err)
	}
	s.prev, s.hasPrev = s.sys.walls.Rebound(h.Current(), raw, next), true
	for _, m := range s.metrics {
		m.Observe(next, t)
	}
	for _, o := range s.observers {
		o.OnStep(next, s.steps, t)
	}
	return next, nil
}

// StepsFor returns ceil(duration/dt), ignoring rounding noise in the ratio.
func StepsFor(duration, dt float64) int {
	return int(math.Ceil(duration/dt - 1e-9))
}

// Run advances ceil(duration/dt) steps. On failure the partial result is
// returned with the error.
func (s *Simulator) Run(ctx context.Context, duration float64) (*Result, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidConfig, duration)
	}

	steps := StepsFor(duration, s.sys.cfg.Dt)
	result := &Result{
		Trajectory: s.traj,
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.traj.Last(), s.Time())
	}

	initial, energyErr := s.solver.Energy(s.traj.Last())
	start := time.Now()
	s.logger.Info("run started",
		zap.Int("steps", steps),
		zap.Float64("dt", s.sys.cfg.Dt),
		zap.String("integrator", s.sys.integrator.Name()),
		zap.Int("particles", len(s.sys.masses)),
		zap.Int("constraints", len(s.sys.constraints)),
	)

	var runErr error
	for i := 0; i < steps; i++ {
		if _, err := s.Step(ctx); err != nil {
			runErr = err
			break
		}
		result.StepsTaken++
	}

	if energyErr == nil {
		final, err := s.solver.Energy(s.traj.Last())
		if err == nil && initial.Total() != 0 {
			result.EnergyDrift = math.Abs(final.Total()-initial.Total()) / math.Abs(initial.Total())
		}
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Error("run failed", zap.Int("steps_taken", result.StepsTaken), zap.Error(runErr))
		return result, runErr
	}
	s.logger.Info("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Duration("elapsed", time.Since(start)),
		zap.Float64("energy_drift", result.EnergyDrift),
	)
	return result, nil
}
