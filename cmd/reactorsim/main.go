package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/integrators"
)

var (
	dataDir  string
	logLevel string

	// parameter sources, lowest to highest precedence after defaults
	preset     string
	configFile string
	setFlags   []string

	dt         float64
	duration   float64
	integrator string
	frameRate  int
	speed      float64
	precursor  bool

	until   float64
	save    bool
	name    string
	outFile string
	format  string
	showPlt bool
	logAxis bool
	trip    float64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the reactorsim commands and exits with status 1 when a
// command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "reactorsim",
		Short:        "point-kinetics reactor simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reactorsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (error, warn, info, debug, trace)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation to completion and print its summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().Float64Var(&until, "until", -1, "stop at this simulated time (default: total time)")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	runCmd.Flags().StringVar(&name, "name", "", "name for the saved run")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "export the series to a .csv or .json file")
	runCmd.Flags().BoolVar(&showPlt, "plot", false, "print a power chart")
	runCmd.Flags().BoolVar(&logAxis, "log", false, "log10 power axis for --plot")
	runCmd.Flags().Float64Var(&trip, "trip", 0, "report time spent above this relative power")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addParamFlags(liveCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "paced playback with a progress line",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
	addParamFlags(playCmd)
	playCmd.Flags().BoolVar(&save, "save", false, "save the run when playback completes")
	playCmd.Flags().StringVar(&name, "name", "", "name for the saved run")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same parameters",
		RunE:  compareIntegrators,
	}
	addParamFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show parameters and summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&format, "format", "", "csv or json (default from --out extension, else csv)")
	exportCmd.Flags().BoolVar(&precursor, "precursor", false, "include the precursor column")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&logAxis, "log", false, "log10 power axis")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter over a linear range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "reactivity_insertion_rate", "parameter key to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.001, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	rootCmd.AddCommand(runCmd, presetsCmd, liveCmd, playCmd, compareCmd, listCmd, showCmd, exportCmd, plotCmd, scenarioCmd, sweepCmd)
	return rootCmd
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "override a parameter, key=value (repeatable)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step in seconds")
	cmd.Flags().Float64Var(&duration, "time", 0, "total simulation time in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "playback frame rate")
	cmd.Flags().Float64Var(&speed, "wall-per-sim", config.DefaultWallSecondsPerSimSecond, "wall seconds per simulated second")
	cmd.Flags().BoolVar(&precursor, "precursor", false, "include the precursor column in exports")
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRHO0\tRATE\tDURATION\tOSC\tTOTAL\tDESCRIPTION")
	for _, n := range config.ListPresets() {
		pr := config.Presets[n]
		p := pr.Params
		fmt.Fprintf(w, "%s\t%g\t%g\t%gs\t%t\t%gs\t%s\n",
			n, p.InitialReactivity, p.ReactivityInsertionRate, p.ReactivityInsertionDuration,
			p.Oscillation, p.TotalSimulationTime, pr.Description)
	}
	return w.Flush()
}
