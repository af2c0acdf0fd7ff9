package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/reactorsim/internal/kinetics"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Description string
	Params      kinetics.Parameters
}

var Presets = map[string]Preset{
	"delayed-critical": {
		Description: "slow ramp to about 0.77 dollars, supercritical on delayed neutrons",
		Params:      preset(func(p *kinetics.Parameters) {}),
	},
	"prompt-critical": {
		Description: "fast ramp past one dollar, runaway prompt excursion",
		Params: preset(func(p *kinetics.Parameters) {
			p.ReactivityInsertionRate = 0.002
			p.ReactivityInsertionDuration = 4
			p.TotalSimulationTime = 10
		}),
	},
	"negative-insertion": {
		Description: "positive start followed by a negative ramp to -0.31 dollars",
		Params: preset(func(p *kinetics.Parameters) {
			p.InitialReactivity = 0.003
			p.ReactivityInsertionRate = -0.001
			p.ReactivityInsertionDuration = 5
			p.TotalSimulationTime = 20
		}),
	},
	"oscillation": {
		Description: "ramp up then mirrored ramp back to the initial reactivity",
		Params: preset(func(p *kinetics.Parameters) {
			p.ReactivityInsertionRate = 0.001
			p.ReactivityInsertionDuration = 5
			p.Oscillation = true
			p.TotalSimulationTime = 20
		}),
	},
}

// preset starts from the delayed-critical reference parameters.
func preset(edit func(*kinetics.Parameters)) kinetics.Parameters {
	p := kinetics.DefaultParameters()
	p.InitialReactivity = 0
	p.ReactivityInsertionRate = 0.0005
	p.ReactivityInsertionDuration = 10
	p.TotalSimulationTime = 50
	edit(&p)
	return p
}

func GetPreset(name string) (kinetics.Parameters, error) {
	pr, ok := Presets[name]
	if !ok {
		return kinetics.Parameters{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return pr.Params, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
