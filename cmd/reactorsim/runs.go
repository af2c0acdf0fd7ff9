package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/export"
	"github.com/san-kum/reactorsim/internal/plot"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(newLogger(logLevel))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tINTEG\tDT\tTOTAL\tPEAK POWER\tPEAK $")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%gs\t%gs\t%.4g\t%.3f\n",
			run.ID[:8],
			run.Name,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Params.TimeStep,
			run.Params.TotalSimulationTime,
			run.Summary.PeakPower,
			run.Summary.PeakDollars,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(newLogger(logLevel))
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := meta.Params
	fmt.Fprintf(out, "id:       %s\n", meta.ID)
	fmt.Fprintf(out, "name:     %s\n", meta.Name)
	fmt.Fprintf(out, "created:  %s\n\n", meta.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "beta %g  lifetime %gs  lambda %g/s\n", p.DelayedNeutronFraction, p.PromptNeutronLifetime, p.PrecursorDecayConstant)
	fmt.Fprintf(out, "rho0 %g  rate %g/s  duration %gs  oscillation %t\n", p.InitialReactivity, p.ReactivityInsertionRate, p.ReactivityInsertionDuration, p.Oscillation)
	fmt.Fprintf(out, "dt %gs  total %gs\n\n", p.TimeStep, p.TotalSimulationTime)
	printSummary(out, meta.Integrator, meta.Summary)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(newLogger(logLevel))
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(cmd.Context(), meta.ID)
	if err != nil {
		return err
	}

	f := export.FormatCSV
	switch {
	case format != "":
		if f, err = export.ParseFormat(format); err != nil {
			return err
		}
	case outFile != "":
		f = export.FormatFromPath(outFile)
	}

	w := cmd.OutOrStdout()
	if outFile != "" {
		file, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	series := engine.ExportSamples(samples, precursor)
	if f == export.FormatJSON {
		return export.WriteJSON(w, export.NewDocument(meta.Integrator, meta.Params, series))
	}
	return export.WriteCSV(w, series)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(newLogger(logLevel))
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(cmd.Context(), meta.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	feed := engine.NewFeed(samples)
	fmt.Fprintf(out, "run: %s (%s)\n", meta.Name, meta.ID[:8])
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))
	fmt.Fprintln(out, plot.Power(feed, plot.Options{Log: logAxis}))
	fmt.Fprintln(out)
	fmt.Fprintln(out, plot.Dollars(feed, plot.Options{}))
	return nil
}
