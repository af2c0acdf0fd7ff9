package engine

// Summary condenses a run into the figures the CLI and sweeps report.
type Summary struct {
	Samples            int     `json:"samples"`
	FinalTime          float64 `json:"final_time_s"`
	FinalPower         float64 `json:"final_power"`
	PeakPower          float64 `json:"peak_power"`
	PeakPowerTime      float64 `json:"peak_power_time_s"`
	MinPower           float64 `json:"min_power"`
	PeakDollars        float64 `json:"peak_dollars"`
	PromptCritical     bool    `json:"prompt_critical"`
	PromptCriticalTime float64 `json:"prompt_critical_time_s"`
}

// Summarize scans samples once. NaN values never become a peak or minimum.
func Summarize(samples []Sample) Summary {
	var sum Summary
	sum.Samples = len(samples)
	if len(samples) == 0 {
		return sum
	}

	first := samples[0]
	sum.PeakPower, sum.PeakPowerTime = first.Power, first.Time
	sum.MinPower = first.Power
	sum.PeakDollars = first.ReactivityDollars

	for _, s := range samples {
		if s.Power > sum.PeakPower {
			sum.PeakPower, sum.PeakPowerTime = s.Power, s.Time
		}
		if s.Power < sum.MinPower {
			sum.MinPower = s.Power
		}
		if s.ReactivityDollars > sum.PeakDollars {
			sum.PeakDollars = s.ReactivityDollars
		}
		if !sum.PromptCritical && s.ReactivityDollars >= 1 {
			sum.PromptCritical = true
			sum.PromptCriticalTime = s.Time
		}
	}

	last := samples[len(samples)-1]
	sum.FinalTime = last.Time
	sum.FinalPower = last.Power
	return sum
}

func (s *Simulation) Summary() Summary {
	return Summarize(s.samples)
}
