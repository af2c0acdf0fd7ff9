package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/automation"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(logLevel)

	runner := automation.Runner{Logger: logger}
	for _, r := range sc.Runs {
		if r.Save {
			st, err := openStore(logger)
			if err != nil {
				return err
			}
			defer st.Close()
			runner.Store = st
			break
		}
	}

	results, err := runner.RunScenario(cmd.Context(), sc)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(out, "%s\n", sc.Description)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tINTEG\tFINAL T\tFINAL POWER\tPEAK POWER\tPEAK $\tPROMPT CRIT\tSAVED")
	for _, r := range results {
		s := r.Summary
		prompt := "-"
		if s.PromptCritical {
			prompt = fmt.Sprintf("%.4gs", s.PromptCriticalTime)
		}
		saved := "-"
		if r.RunID != "" {
			saved = r.RunID[:8]
		}
		fmt.Fprintf(w, "%s\t%s\t%gs\t%.6g\t%.6g\t%.3f\t%s\t%s\n",
			r.Name, r.Sim.Integrator(), s.FinalTime, s.FinalPower, s.PeakPower, s.PeakDollars, prompt, saved)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	results, err := automation.Runner{Logger: logger}.RunSweep(cmd.Context(), automation.Sweep{
		Base:       cfg.Params,
		Integrator: cfg.Integrator,
		Param:      sweepParam,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL POWER\tPEAK POWER\tPEAK T\tPEAK $\n", sweepParam)
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%g\t%.6g\t%.6g\t%.4gs\t%.3f\n", r.Value, s.FinalPower, s.PeakPower, s.PeakPowerTime, s.PeakDollars)
	}
	return w.Flush()
}
