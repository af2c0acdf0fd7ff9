package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorsim/internal/engine"
)

var _ = Describe("Export", func() {
	var s *engine.Simulation

	BeforeEach(func() {
		p := baseParams()
		p.TotalSimulationTime = 1
		s, _ = engine.RunTo(ctx, p, 1)
	})

	It("projects rows without the precursor column", func() {
		series := s.Export(false)
		Expect(series.Columns).To(Equal([]string{"time_s", "power_relative", "reactivity_dollars"}))
		Expect(series.Rows).To(HaveLen(s.Len()))
		for i, row := range series.Rows {
			smp := s.At(i)
			Expect(row).To(Equal([]float64{smp.Time, smp.Power, smp.ReactivityDollars}))
		}
	})

	It("appends the precursor column on request", func() {
		series := s.Export(true)
		Expect(series.Columns).To(HaveLen(4))
		Expect(series.Columns[3]).To(Equal(engine.ColumnPrecursor))
		Expect(series.Rows[5][3]).To(Equal(s.At(5).Precursor))
	})

	It("builds parallel arrays for plotting", func() {
		f := s.Feed()
		Expect(f.Time).To(HaveLen(s.Len()))
		Expect(f.Power).To(HaveLen(s.Len()))
		Expect(f.Dollars[3]).To(Equal(s.At(3).ReactivityDollars))
		Expect(f.Precursor[7]).To(Equal(s.At(7).Precursor))
	})
})

var _ = Describe("Summarize", func() {
	It("handles an empty history", func() {
		Expect(engine.Summarize(nil)).To(Equal(engine.Summary{}))
	})

	It("finds peaks and skips NaN", func() {
		samples := []engine.Sample{
			{Time: 0, Power: 1, ReactivityDollars: 0},
			{Time: 1, Power: 3, ReactivityDollars: 0.5},
			{Time: 2, Power: math.NaN(), ReactivityDollars: 1.2},
			{Time: 3, Power: 0.5, ReactivityDollars: 0.9},
		}
		sum := engine.Summarize(samples)
		Expect(sum.Samples).To(Equal(4))
		Expect(sum.PeakPower).To(Equal(3.0))
		Expect(sum.PeakPowerTime).To(Equal(1.0))
		Expect(sum.MinPower).To(Equal(0.5))
		Expect(sum.PeakDollars).To(Equal(1.2))
		Expect(sum.PromptCritical).To(BeTrue())
		Expect(sum.PromptCriticalTime).To(Equal(2.0))
		Expect(sum.FinalPower).To(Equal(0.5))
		Expect(sum.FinalTime).To(Equal(3.0))
	})
})
