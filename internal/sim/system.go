// Package sim holds the dynamical system, its force solver and the run loop.
package sim

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/lagrangian/internal/celllists"
	"github.com/san-kum/lagrangian/internal/collision"
	"github.com/san-kum/lagrangian/internal/diff"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/integrators"
	"github.com/san-kum/lagrangian/internal/potential"
)

// Config describes the particles and the numerical setup of a system.
type Config struct {
	Positions  dynamo.Coords
	Velocities dynamo.Coords
	Masses     map[string]float64

	Dt         float64
	Integrator string

	XLim, YLim     [2]float64
	CellDx, CellDy float64
	Restitution    float64

	// RefreshEvery is the number of steps between neighbor list rebuilds.
	RefreshEvery int
	Workers      int
}

func DefaultConfig() Config {
	return Config{
		Dt:           1.0 / 60,
		Integrator:   "ssprk3",
		XLim:         [2]float64{-10, 10},
		YLim:         [2]float64{-10, 10},
		CellDx:       1,
		CellDy:       1,
		Restitution:  1,
		RefreshEvery: 5,
		Workers:      1,
	}
}

// System is the time-independent description of a simulation. It is
// read-only once the simulator starts.
type System struct {
	cfg        Config
	initial    dynamo.State
	masses     map[string]float64
	integrator dynamo.Integrator
	walls      *collision.Walls
	grid       *celllists.Grid

	potentials  []*potential.Potential
	pairs       []*potential.PairPotential
	constraints []*potential.Constraint

	logger *zap.Logger
}

type Option func(*System)

func WithLogger(l *zap.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSystem validates cfg and builds the system. Zero values for the
// integrator, cell sizes, refresh cadence and workers take the defaults.
func NewSystem(cfg Config, opts ...Option) (*System, error) {
	def := DefaultConfig()
	if cfg.Integrator == "" {
		cfg.Integrator = def.Integrator
	}
	if cfg.CellDx == 0 {
		cfg.CellDx = def.CellDx
	}
	if cfg.CellDy == 0 {
		cfg.CellDy = def.CellDy
	}
	if cfg.RefreshEvery == 0 {
		cfg.RefreshEvery = def.RefreshEvery
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}

	if len(cfg.Positions) == 0 {
		return nil, fmt.Errorf("%w: no particles", dynamo.ErrInvalidConfig)
	}
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.RefreshEvery < 0 || cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: refresh cadence %d and workers %d must not be negative", dynamo.ErrInvalidConfig, cfg.RefreshEvery, cfg.Workers)
	}
	for id := range cfg.Velocities {
		if _, ok := cfg.Positions[id]; !ok {
			return nil, fmt.Errorf("velocity: %w: %q", dynamo.ErrUnknownCoordinate, id)
		}
	}

	masses := make(map[string]float64, len(cfg.Positions))
	for id := range cfg.Positions {
		masses[id] = 1
	}
	for id, m := range cfg.Masses {
		if _, ok := cfg.Positions[id]; !ok {
			return nil, fmt.Errorf("mass: %w: %q", dynamo.ErrUnknownCoordinate, id)
		}
		if !(m > 0) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("%w: mass of %q must be positive, got %g", dynamo.ErrInvalidConfig, id, m)
		}
		masses[id] = m
	}

	qdots := dynamo.ZeroCoords(cfg.Positions.Keys())
	for id, v := range cfg.Velocities {
		qdots[id] = v
	}
	initial := dynamo.NewState(cfg.Positions, qdots)
	if !initial.IsValid() {
		return nil, fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}

	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	walls, err := collision.NewWalls(collision.NewBox(cfg.XLim, cfg.YLim), cfg.Restitution)
	if err != nil {
		return nil, fmt.Errorf("walls: %w", err)
	}
	grid, err := celllists.New(cfg.XLim, cfg.YLim, cfg.CellDx, cfg.CellDy)
	if err != nil {
		return nil, fmt.Errorf("cell lists: %w", err)
	}

	s := &System{
		cfg:        cfg,
		initial:    initial,
		masses:     masses,
		integrator: integ,
		walls:      walls,
		grid:       grid,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *System) checkCoords(coords []string) error {
	for _, c := range coords {
		if _, ok := s.masses[c]; !ok {
			return fmt.Errorf("%w: %q", dynamo.ErrUnknownCoordinate, c)
		}
	}
	return nil
}

// AddPotential registers an energy U(coords...).
func (s *System) AddPotential(fn diff.Func, coords []string, params diff.Params) error {
	if err := s.checkCoords(coords); err != nil {
		return fmt.Errorf("potential: %w", err)
	}
	p, err := potential.NewPotential(fn, coords, params)
	if err != nil {
		return err
	}
	s.potentials = append(s.potentials, p)
	return nil
}

// AddPairPotential registers a symmetric energy applied to every neighbor
// pair found by the cell lists.
func (s *System) AddPairPotential(fn potential.PairFunc, params diff.Params) error {
	p, err := potential.NewPairPotential(fn, params)
	if err != nil {
		return err
	}
	s.pairs = append(s.pairs, p)
	return nil
}

// AddConstraint registers a holonomic constraint F(coords...) = 0.
func (s *System) AddConstraint(fn diff.Func, coords []string, params diff.Params) error {
	if err := s.checkCoords(coords); err != nil {
		return fmt.Errorf("constraint: %w", err)
	}
	c, err := potential.NewConstraint(fn, coords, params)
	if err != nil {
		return err
	}
	s.constraints = append(s.constraints, c)
	return nil
}

func (s *System) Config() Config { return s.cfg }

func (s *System) Initial() dynamo.State { return s.initial }

func (s *System) Mass(id string) float64 { return s.masses[id] }

func (s *System) Integrator() dynamo.Integrator { return s.integrator }

func (s *System) Walls() *collision.Walls { return s.walls }

func (s *System) Constraints() []*potential.Constraint { return s.constraints }

func (s *System) HasPairs() bool { return len(s.pairs) > 0 }

func (s *System) Logger() *zap.Logger { return s.logger }

// Neighbors rebuilds the cell lists for qs. Without pair potentials it
// returns nil.
func (s *System) Neighbors(qs dynamo.Coords) celllists.NeighborLists {
	if !s.HasPairs() {
		return nil
	}
	return s.grid.Rebuild(qs)
}
