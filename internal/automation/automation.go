// Package automation runs scripted scenarios and parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/logging"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is one run in a scenario. Params are overrides applied on top
// of the preset (or the defaults when Preset is empty).
type ScenarioRun struct {
	Name       string         `yaml:"name"`
	Preset     string         `yaml:"preset"`
	Integrator string         `yaml:"integrator"`
	Params     map[string]any `yaml:"params"`
	// Target stops the run early; nil runs to the total simulation time.
	Target *float64 `yaml:"target"`
	Save   bool     `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}
	return &scenario, nil
}

// Saver persists a finished run. *storage.Store satisfies it.
type Saver interface {
	Save(ctx context.Context, name string, sim *engine.Simulation) (string, error)
}

// Runner executes scenarios and sweeps. Store may be nil, in which case
// runs marked for saving are not persisted. Workers caps concurrent sweep
// points; zero means GOMAXPROCS.
type Runner struct {
	Logger  *slog.Logger
	Store   Saver
	Workers int
}

type RunResult struct {
	Name    string
	Sim     *engine.Simulation
	Summary engine.Summary
	RunID   string
}

func (r Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

// ResolveParams resolves the run's preset and overrides.
func (sr ScenarioRun) ResolveParams() (kinetics.Parameters, error) {
	p := kinetics.DefaultParameters()
	if sr.Preset != "" {
		var err error
		if p, err = config.GetPreset(sr.Preset); err != nil {
			return p, err
		}
	}
	if err := config.ApplyOverrides(&p, sr.Params); err != nil {
		return p, err
	}
	return p, nil
}

// RunScenario executes all runs in order and stops at the first failure,
// returning the results completed so far.
func (r Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]RunResult, error) {
	log := r.logger()
	results := make([]RunResult, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}

		p, err := run.ResolveParams()
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}
		target := p.TotalSimulationTime
		if run.Target != nil {
			target = *run.Target
		}

		log.Info("scenario run", "index", i+1, "of", len(scenario.Runs), "name", name, "target", target)
		sim, err := engine.RunTo(ctx, p, target, engine.WithIntegrator(run.Integrator), engine.WithLogger(log))
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		res := RunResult{Name: name, Sim: sim, Summary: sim.Summary()}
		if run.Save && r.Store != nil {
			id, err := r.Store.Save(ctx, name, sim)
			if err != nil {
				return results, fmt.Errorf("run %d (%s) save: %w", i+1, name, err)
			}
			res.RunID = id
		}
		results = append(results, res)
	}

	return results, nil
}

// Sweep varies one parameter, named by its mapstructure key, over a linear
// range.
type Sweep struct {
	Base       kinetics.Parameters
	Integrator string
	Param      string
	Min        float64
	Max        float64
	Steps      int
}

// SweepResult holds one point of a sweep
type SweepResult struct {
	Value   float64
	Summary engine.Summary
}

// Values returns the sweep points. A single step sweeps only Min.
func (s Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	vals[len(vals)-1] = s.Max
	return vals
}

// RunSweep executes a parameter sweep on at most Workers goroutines.
// Results keep the order of Values.
func (r Runner) RunSweep(ctx context.Context, sweep Sweep) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.Steps)
	}
	log := r.logger()
	values := sweep.Values()
	results := make([]SweepResult, len(values))
	errs := make([]error, len(values))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := r.workers(len(values))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = runSweepPoint(ctx, sweep, values[idx], log)
				if errs[idx] == nil {
					log.Info("sweep point", "index", idx+1, "of", len(values), "param", sweep.Param, "value", values[idx])
				}
			}
		}()
	}
	for i := range values {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// workers bounds the sweep fan-out by Workers, or GOMAXPROCS when unset.
func (r Runner) workers(points int) int {
	n := r.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, points))
}

func runSweepPoint(ctx context.Context, sweep Sweep, v float64, log *slog.Logger) (SweepResult, error) {
	p := sweep.Base
	if err := config.ApplyOverrides(&p, map[string]any{sweep.Param: v}); err != nil {
		return SweepResult{}, err
	}
	sim, err := engine.RunTo(ctx, p, p.TotalSimulationTime, engine.WithIntegrator(sweep.Integrator), engine.WithLogger(log))
	if err != nil {
		return SweepResult{}, fmt.Errorf("sweep %s=%g: %w", sweep.Param, v, err)
	}
	return SweepResult{Value: v, Summary: sim.Summary()}, nil
}
