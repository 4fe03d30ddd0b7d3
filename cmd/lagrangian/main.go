package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	dataDir string

	configFile string
	preset     string

	dt          float64
	duration    float64
	integrator  string
	bodies      int
	restitution float64
	workers     int

	logLevel  string
	logFormat string
	logFile   string

	plotID  string
	pathID  string
	csvOut  string
	jsonOut string
	svgOut  string
	save    bool

	sweepParams []string
	metricName  string

	mcParam  string
	mcBase   float64
	mcSpread float64
	mcTrials int
	mcSeed   int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lagrangian",
		Short:        "constrained 2D particle dynamics",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lagrangian", "data directory for saved runs")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&plotID, "plot", "", "plot the height of this particle")
	runCmd.Flags().StringVar(&pathID, "path", "", "draw the path of this particle")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "write the trajectory as CSV")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write a JSON summary")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write every particle path as SVG")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list integrators",
		Args:  cobra.NoArgs,
		RunE:  listIntegrators,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id] [particle]",
		Short: "plot a particle from a saved run",
		Args:  cobra.ExactArgs(2),
		RunE:  showRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [integrator...]",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search over scenario parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")

	batchCmd := &cobra.Command{
		Use:   "batch [script]",
		Short: "run a scripted sequence of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "perturb one parameter at random and count stable runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().StringVar(&mcParam, "param", "angle", "parameter to perturb")
	monteCarloCmd.Flags().Float64Var(&mcBase, "base", 0.5, "central value")
	monteCarloCmd.Flags().Float64Var(&mcSpread, "spread", 0.1, "perturbation half-width")
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", time.Now().UnixNano(), "random seed")

	rootCmd.AddCommand(runCmd, presetsCmd, integratorsCmd, runsCmd, showCmd, compareCmd, sweepCmd, batchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	cmd.Flags().IntVar(&bodies, "bodies", 0, "number of bodies")
	cmd.Flags().Float64Var(&restitution, "restitution", 1, "wall restitution in [0, 1]")
	cmd.Flags().IntVar(&workers, "workers", 1, "force workers")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "console or json")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also log to this file")
}
