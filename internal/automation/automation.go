// Package automation runs scripted batches and Monte Carlo studies of
// scenarios.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/dynamo"
	"github.com/san-kum/lagrangian/internal/experiment"
	"github.com/san-kum/lagrangian/internal/optim"
	"github.com/san-kum/lagrangian/internal/sim"
	"github.com/san-kum/lagrangian/internal/storage"
)

// Script is a scripted sequence of runs.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset or a scenario file, then applies Params by name
// (see optim.Setters).
type Step struct {
	Scenario   string             `yaml:"scenario"`
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

type StepResult struct {
	Config *config.Config
	Result *sim.Result
	RunID  string
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("%w: script %q has no steps", dynamo.ErrInvalidConfig, script.Name)
	}
	return &script, nil
}

func (s Step) resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Scenario, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s", dynamo.ErrInvalidConfig, s.Scenario, s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
		if s.Scenario != "" {
			cfg = config.ForScenario(s.Scenario)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	return optim.Apply(cfg, s.Params)
}

// RunScript executes the steps in order and stops at the first failure.
// Steps marked Save are written to st, which may be nil otherwise.
func RunScript(ctx context.Context, script *Script, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(script.Steps))

	for i, step := range script.Steps {
		cfg, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Config: cfg, Result: result}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: no store to save to", i+1)
			}
			if sr.RunID, err = st.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs one parameter uniformly within ±Perturbation
// of Base on every trial.
type MonteCarloConfig struct {
	Param        string
	Base         float64
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Value   float64
	Metrics map[string]float64
	// Stable is false when the run failed or any particle outran the
	// stability speed.
	Stable bool
	Err    error
}

func RunMonteCarlo(ctx context.Context, base *config.Config, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if _, ok := optim.Setters[mc.Param]; !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, mc.Param)
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		v := mc.Base + (rng.Float64()-0.5)*2*mc.Perturbation
		r := MonteCarloResult{TrialID: trial, Value: v}

		cfg, err := optim.Apply(base, map[string]float64{mc.Param: v})
		if err != nil {
			return results, err
		}

		exp := experiment.New(cfg)
		if r.Err = exp.Setup(); r.Err == nil {
			var result *sim.Result
			result, r.Err = exp.Run(ctx)
			if result != nil {
				r.Metrics = result.Metrics
			}
		}
		r.Stable = r.Err == nil && r.Metrics["stability"] == 1

		results = append(results, r)
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
