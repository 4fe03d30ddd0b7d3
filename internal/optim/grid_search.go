// Package optim sweeps scenario parameters and integrators.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/experiment"
)

// Setters are the numeric scenario fields a search can vary.
var Setters = map[string]func(c *config.Config, v float64){
	"dt":          func(c *config.Config, v float64) { c.Dt = v },
	"duration":    func(c *config.Config, v float64) { c.Duration = v },
	"mass":        func(c *config.Config, v float64) { c.Bodies.Mass = v },
	"spacing":     func(c *config.Config, v float64) { c.Bodies.Spacing = v },
	"angle":       func(c *config.Config, v float64) { c.Bodies.Angle = v },
	"speed":       func(c *config.Config, v float64) { c.Bodies.Speed = v },
	"gravity":     func(c *config.Config, v float64) { c.Forces.Gravity = v },
	"stiffness":   func(c *config.Config, v float64) { c.Forces.Stiffness = v },
	"bending":     func(c *config.Config, v float64) { c.Forces.Bending = v },
	"restitution": func(c *config.Config, v float64) { c.World.Restitution = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of base with params set.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		set, ok := Setters[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, name)
		}
		set(cfg, v)
	}
	return cfg, nil
}

// Trial is one run of a search. A trial whose setup or run failed keeps
// the error and is never the best.
type Trial struct {
	Integrator string
	Params     map[string]float64
	Metrics    map[string]float64
	Steps      int
	Err        error
}

func runTrial(ctx context.Context, cfg *config.Config, params map[string]float64) Trial {
	trial := Trial{Integrator: cfg.Integrator, Params: params}
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if result != nil {
		trial.Metrics = result.Metrics
		trial.Steps = result.StepsTaken
	}
	trial.Err = err
	return trial
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64, workers int) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrInvalidConfig, len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", dynamo.ErrInvalidConfig, name)
		}
	}
	if workers < 1 {
		workers = 1
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: workers}, nil
}

// Points enumerates the grid, varying the last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	var walk func(depth int, current map[string]float64)
	walk = func(depth int, current map[string]float64) {
		if depth == len(g.paramNames) {
			points = append(points, current)
			return
		}
		for _, v := range g.ranges[depth] {
			next := make(map[string]float64, len(current)+1)
			for k, cv := range current {
				next[k] = cv
			}
			next[g.paramNames[depth]] = v
			walk(depth+1, next)
		}
	}
	walk(0, map[string]float64{})
	return points
}

// Search runs every grid point and returns the trials in grid order along
// with the index of the one minimizing metric, or -1 if every trial failed.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) ([]Trial, int, error) {
	points := g.Points()
	trials := make([]Trial, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, p := range points {
		i, p := i, p
		eg.Go(func() error {
			cfg, err := Apply(base, p)
			if err != nil {
				return err
			}
			trials[i] = runTrial(ctx, cfg, p)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return trials, -1, err
	}
	return trials, Best(trials, metric), nil
}

// Compare runs base once per integrator.
func Compare(ctx context.Context, base *config.Config, integrators []string) ([]Trial, error) {
	trials := make([]Trial, len(integrators))
	for i, name := range integrators {
		if err := ctx.Err(); err != nil {
			return trials[:i], err
		}
		cfg := base.Clone()
		cfg.Integrator = name
		trials[i] = runTrial(ctx, cfg, nil)
	}
	return trials, nil
}

// Best returns the index of the successful trial with the smallest metric,
// or -1.
func Best(trials []Trial, metric string) int {
	best, bestVal := -1, math.Inf(1)
	for i, t := range trials {
		if t.Err != nil {
			continue
		}
		v, ok := t.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if v < bestVal {
			best, bestVal = i, v
		}
	}
	return best
}
