package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/export"
	"github.com/san-kum/reactorsim/internal/logging"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/playback"
	"github.com/san-kum/reactorsim/internal/plot"
	"github.com/san-kum/reactorsim/internal/storage"
	"github.com/san-kum/reactorsim/internal/tui"
	"github.com/san-kum/reactorsim/internal/viz"
)

// resolveConfig layers defaults, preset, config file, --set overrides and
// explicit flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg.Params = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	overrides, err := config.ParseOverrides(setFlags)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyOverrides(&cfg.Params, overrides); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Params.TimeStep = dt
	}
	if flags.Changed("time") {
		cfg.Params.TotalSimulationTime = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("fps") {
		cfg.Playback.FPS = frameRate
	}
	if flags.Changed("wall-per-sim") {
		cfg.Playback.WallSecondsPerSimSecond = speed
	}
	if flags.Changed("precursor") {
		cfg.Export.IncludePrecursor = precursor
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	return logging.NewLogger(level, os.Stderr)
}

func openStore(logger *slog.Logger) (*storage.Store, error) {
	st, err := storage.Open(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	return st, nil
}

func engineOptions(cfg *config.Config, logger *slog.Logger) []engine.Option {
	return []engine.Option{engine.WithIntegrator(cfg.Integrator), engine.WithLogger(logger)}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	target := cfg.Params.TotalSimulationTime
	if cmd.Flags().Changed("until") {
		target = until
	}

	start := time.Now()
	sim, err := engine.RunTo(cmd.Context(), cfg.Params, target, engineOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	logger.Info("run complete", "samples", sim.Len(), "elapsed", time.Since(start))

	out := cmd.OutOrStdout()
	printSummary(out, sim.Integrator(), sim.Summary())
	if cmd.Flags().Changed("trip") {
		printTrip(out, sim, trip)
	}

	if showPlt {
		fmt.Fprintln(out)
		fmt.Fprintln(out, plot.Power(sim.Feed(), plot.Options{Log: logAxis}))
	}

	if outFile != "" {
		if err := export.WriteFile(outFile, sim, cfg.Export.IncludePrecursor); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		fmt.Fprintf(out, "exported: %s\n", outFile)
	}

	if save {
		return saveRun(cmd, logger, sim)
	}
	return nil
}

func saveRun(cmd *cobra.Command, logger *slog.Logger, sim *engine.Simulation) error {
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(cmd.Context(), name, sim)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved: %s\n", id)
	return nil
}

func printSummary(w io.Writer, integ string, s engine.Summary) {
	fmt.Fprintf(w, "integrator:     %s\n", integ)
	fmt.Fprintf(w, "samples:        %d\n", s.Samples)
	fmt.Fprintf(w, "final time:     %.4gs\n", s.FinalTime)
	fmt.Fprintf(w, "final power:    %.6g\n", s.FinalPower)
	fmt.Fprintf(w, "peak power:     %.6g at %.4gs\n", s.PeakPower, s.PeakPowerTime)
	fmt.Fprintf(w, "min power:      %.6g\n", s.MinPower)
	fmt.Fprintf(w, "peak reactivity: %.4f $\n", s.PeakDollars)
	if s.PromptCritical {
		fmt.Fprintf(w, "prompt critical at %.4gs\n", s.PromptCriticalTime)
	}
}

func printTrip(w io.Writer, sim *engine.Simulation, threshold float64) {
	exc := metrics.NewExcursion(threshold, sim.Params().TimeStep)
	metrics.ObserveAll(sim.Samples(), exc)
	if exc.FirstTrip() < 0 {
		fmt.Fprintf(w, "trip %.4g:       not reached\n", threshold)
		return
	}
	fmt.Fprintf(w, "trip %.4g:       first at %.4gs, %.4gs above (%.1f%%)\n",
		threshold, exc.FirstTrip(), exc.Value(), 100*exc.Fraction())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the TUI owns the terminal, so logs are dropped
	pl, err := playback.NewPlayer(cfg.Params, playback.Options{
		WallSecondsPerSimSecond: cfg.Playback.WallSecondsPerSimSecond,
		Engine:                  engineOptions(cfg, logging.Discard()),
	})
	if err != nil {
		return err
	}

	title := "reactorsim"
	if preset != "" {
		title += " · " + preset
	}
	return viz.Run(pl, title, cfg.Playback.FPS)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	out := cmd.OutOrStdout()

	renderer := tui.NewLiveRenderer(out, cfg.Params.TotalSimulationTime, 10)
	pl, err := playback.NewPlayer(cfg.Params, playback.Options{
		WallSecondsPerSimSecond: cfg.Playback.WallSecondsPerSimSecond,
		Engine:                  engineOptions(cfg, logger),
		Logger:                  logger,
		OnStep:                  renderer.OnStep,
	})
	if err != nil {
		return err
	}

	err = pl.Play(cmd.Context(), playback.NewWallClock(cfg.Playback.FPS))
	renderer.Finish(pl.Last())
	if err != nil {
		return fmt.Errorf("playback interrupted at %.4gs: %w", pl.Last().Time, err)
	}

	if save {
		// a batch replay is identical to the paced run
		sim, err := engine.RunTo(cmd.Context(), cfg.Params, cfg.Params.TotalSimulationTime, engineOptions(cfg, logger)...)
		if err != nil {
			return err
		}
		return saveRun(cmd, logger, sim)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	names := args
	if len(names) == 0 {
		names = []string{"euler", "rk4"}
	}

	out := cmd.OutOrStdout()
	p := cfg.Params
	fmt.Fprintf(out, "comparing integrators (dt=%g, total=%gs)\n\n", p.TimeStep, p.TotalSimulationTime)
	fmt.Fprintf(out, "%-12s  %-14s  %-14s  %-10s  %-10s\n", "integrator", "final_power", "peak_power", "peak_t", "time_ms")
	fmt.Fprintln(out, strings.Repeat("-", 68))

	for _, n := range names {
		start := time.Now()
		sim, err := engine.RunTo(cmd.Context(), p, p.TotalSimulationTime, engine.WithIntegrator(n), engine.WithLogger(logger))
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(out, "%-12s  error: %v\n", n, err)
			continue
		}
		s := sim.Summary()
		fmt.Fprintf(out, "%-12s  %14.6g  %14.6g  %10.4g  %10.2f\n",
			n, s.FinalPower, s.PeakPower, s.PeakPowerTime, float64(elapsed.Microseconds())/1000)
	}
	return nil
}
