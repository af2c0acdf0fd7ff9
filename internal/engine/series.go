package engine

const (
	ColumnTime      = "time_s"
	ColumnPower     = "power_relative"
	ColumnDollars   = "reactivity_dollars"
	ColumnPrecursor = "precursor_concentration"
)

// Series is the row-oriented export of a run. Column order is fixed; the
// precursor column is present only when requested.
type Series struct {
	Columns []string
	Rows    [][]float64
}

// Export projects the history into rows without recomputing anything.
func (s *Simulation) Export(includePrecursor bool) Series {
	return ExportSamples(s.samples, includePrecursor)
}

func ExportSamples(samples []Sample, includePrecursor bool) Series {
	cols := []string{ColumnTime, ColumnPower, ColumnDollars}
	if includePrecursor {
		cols = append(cols, ColumnPrecursor)
	}

	rows := make([][]float64, len(samples))
	for i, smp := range samples {
		row := make([]float64, 0, len(cols))
		row = append(row, smp.Time, smp.Power, smp.ReactivityDollars)
		if includePrecursor {
			row = append(row, smp.Precursor)
		}
		rows[i] = row
	}
	return Series{Columns: cols, Rows: rows}
}

// Feed exposes the history as parallel arrays for plotting.
type Feed struct {
	Time      []float64
	Power     []float64
	Dollars   []float64
	Precursor []float64
}

func (s *Simulation) Feed() Feed {
	return NewFeed(s.samples)
}

func NewFeed(samples []Sample) Feed {
	f := Feed{
		Time:      make([]float64, len(samples)),
		Power:     make([]float64, len(samples)),
		Dollars:   make([]float64, len(samples)),
		Precursor: make([]float64, len(samples)),
	}
	for i, smp := range samples {
		f.Time[i] = smp.Time
		f.Power[i] = smp.Power
		f.Dollars[i] = smp.ReactivityDollars
		f.Precursor[i] = smp.Precursor
	}
	return f
}
