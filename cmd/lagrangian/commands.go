package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/lagrangian/internal/analysis"
	"github.com/san-kum/lagrangian/internal/automation"
	"github.com/san-kum/lagrangian/internal/collision"
	"github.com/san-kum/lagrangian/internal/config"
	"github.com/san-kum/lagrangian/internal/experiment"
	"github.com/san-kum/lagrangian/internal/export"
	"github.com/san-kum/lagrangian/internal/integrators"
	"github.com/san-kum/lagrangian/internal/observability"
	"github.com/san-kum/lagrangian/internal/optim"
	"github.com/san-kum/lagrangian/internal/storage"
	"github.com/san-kum/lagrangian/internal/trajectory"
)

// resolveConfig layers defaults, the preset, the config file and finally
// any flags set on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	scenario := ""
	if len(args) > 0 {
		scenario = args[0]
		cfg = config.ForScenario(scenario)
	}

	if preset != "" {
		if scenario == "" {
			return nil, fmt.Errorf("--preset needs a scenario")
		}
		p := config.GetPreset(scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if scenario != "" {
			cfg.Scenario = scenario
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("bodies") {
		cfg.Bodies.Count = bodies
	}
	if flags.Changed("restitution") {
		cfg.World.Restitution = restitution
	}
	if flags.Changed("workers") {
		cfg.World.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := observability.NewStderrLogger(cfg.Log)
	defer logger.Sync()

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s with %s...\n", cfg.Scenario, cfg.Integrator)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		if result != nil && result.StepsTaken > 0 {
			fmt.Printf("stopped after %d steps\n", result.StepsTaken)
		}
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.6g\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	traj := result.Trajectory
	if plotID != "" {
		if err := plotHeight(traj, plotID, cfg.Dt); err != nil {
			return err
		}
	}
	if pathID != "" {
		path, err := traj.Series(pathID)
		if err != nil {
			return err
		}
		fmt.Printf("\npath of %s:\n%s", pathID, analysis.PathToASCII(path, 80, 24))
	}

	if csvOut != "" {
		if err := writeFile(csvOut, traj.WriteCSV); err != nil {
			return err
		}
		logger.Info("trajectory written", zap.String("path", csvOut))
	}
	if jsonOut != "" {
		sum := trajectory.Summary{
			Scenario:   cfg.Scenario,
			Integrator: cfg.Integrator,
			Dt:         cfg.Dt,
			Duration:   cfg.Duration,
			Metrics:    result.Metrics,
		}
		err := writeFile(jsonOut, func(w io.Writer) error { return traj.WriteJSON(w, sum) })
		if err != nil {
			return err
		}
		logger.Info("summary written", zap.String("path", jsonOut))
	}
	if svgOut != "" {
		box := collision.NewBox(cfg.World.XLim, cfg.World.YLim)
		err := writeFile(svgOut, func(w io.Writer) error { return export.PathsSVG(w, traj, box, 800) })
		if err != nil {
			return err
		}
		logger.Info("paths written", zap.String("path", svgOut))
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func plotHeight(traj *trajectory.Trajectory, id string, dt float64) error {
	path, err := traj.Series(id)
	if err != nil {
		return err
	}
	ys := analysis.Ys(path)

	caption := fmt.Sprintf("%s height", id)
	if f, err := analysis.DominantFrequency(analysis.Xs(path), dt); err == nil && f > 0 {
		caption = fmt.Sprintf("%s height, x period %.3f", id, 1/f)
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(downsample(ys, 200),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	return nil
}

func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	step := len(data) / n
	out := make([]float64, 0, n+1)
	for i := 0; i < len(data); i += step {
		out = append(out, data[i])
	}
	return out
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenarios := config.ListScenarios()
	if len(args) > 0 {
		scenarios = args
	}
	for _, s := range scenarios {
		names := config.ListPresets(s)
		if len(names) == 0 {
			fmt.Printf("no presets for scenario: %s\n", s)
			continue
		}
		fmt.Printf("presets for %s:\n", s)
		for _, p := range names {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func listIntegrators(cmd *cobra.Command, args []string) error {
	for _, name := range integrators.Names() {
		fmt.Println(name)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tINTEGRATOR\tDT\tSTEPS\tDRIFT\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%d\t%.3g\t%s\n",
			r.ID, r.Scenario, r.Integrator, r.Dt, r.Steps, r.EnergyDrift, r.Timestamp.Format(time.DateTime))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s with %s, %d steps\n", meta.ID, meta.Scenario, meta.Integrator, meta.Steps)
	if err := plotHeight(traj, args[1], meta.Dt); err != nil {
		return err
	}
	path, err := traj.Series(args[1])
	if err != nil {
		return err
	}
	fmt.Printf("\n%s", analysis.PathToASCII(path, 80, 24))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	trials, err := optim.Compare(ctx, cfg, args[1:])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tENERGY DRIFT\tCONSTRAINT\tSTATUS")
	for _, t := range trials {
		status := "ok"
		if t.Err != nil {
			status = t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%s\n",
			t.Integrator, t.Steps, t.Metrics["energy_drift"], t.Metrics["constraint_violation"], status)
	}
	return w.Flush()
}

func parseParam(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2", arg)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return strings.TrimSpace(name), values, nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("no --param given (one of %v)", optim.ParamNames())
	}

	var names []string
	var ranges [][]float64
	for _, arg := range sweepParams {
		name, values, err := parseParam(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g, err := optim.NewGridSearch(names, ranges, cfg.World.Workers)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	trials, best, err := g.Search(ctx, cfg, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSTATUS\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for i, t := range trials {
		var cols []string
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(t.Params[n], 'g', -1, 64))
		}
		status := "ok"
		if t.Err != nil {
			status = t.Err.Error()
		} else if i == best {
			status = "best"
		}
		fmt.Fprintf(w, "%s\t%.4e\t%s\n", strings.Join(cols, "\t"), t.Metrics[metricName], status)
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d steps)\n", script.Name, len(script.Steps))
	results, err := automation.RunScript(ctx, script, st)
	for i, r := range results {
		fmt.Printf("  %d. %s/%s: %d steps, drift %.3e", i+1, r.Config.Scenario, r.Config.Integrator,
			r.Result.StepsTaken, r.Result.EnergyDrift)
		if r.RunID != "" {
			fmt.Printf(", saved as %s", r.RunID)
		}
		fmt.Println()
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, cfg, &automation.MonteCarloConfig{
		Param:        mcParam,
		Base:         mcBase,
		Perturbation: mcSpread,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s in [%g, %g]: %d stable, %d unstable\n", mcParam, mcBase-mcSpread, mcBase+mcSpread, stable, unstable)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
