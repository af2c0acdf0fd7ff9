package engine_test

import (
	"bytes"
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/logging"
)

func baseParams() kinetics.Parameters {
	return kinetics.Parameters{
		DelayedNeutronFraction:      0.0065,
		PromptNeutronLifetime:       1e-4,
		PrecursorDecayConstant:      0.1,
		InitialReactivity:           0,
		ReactivityInsertionRate:     0.0005,
		ReactivityInsertionDuration: 10,
		TotalSimulationTime:         50,
		TimeStep:                    0.1,
	}
}

// normalized uses Λ = 1, where β/λ is the unit-power equilibrium and a 0.1 s
// Euler step is well inside the stability region.
func normalized(p kinetics.Parameters) kinetics.Parameters {
	p.PromptNeutronLifetime = 1
	return p
}

func sampleAt(s *engine.Simulation, t float64) engine.Sample {
	i := int(math.Round(t / s.Params().TimeStep))
	return s.At(i)
}

var ctx = context.Background()

var _ = Describe("Reset", func() {
	It("seeds the initial condition", func() {
		p := baseParams()
		p.InitialReactivity = 0.001

		s, err := engine.Reset(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(1))
		first := s.At(0)
		Expect(first.Time).To(Equal(0.0))
		Expect(first.Power).To(Equal(1.0))
		Expect(first.ReactivityDollars).To(BeNumerically("~", 0.001/0.0065, 1e-12))
		Expect(first.Precursor).To(Equal(p.DelayedNeutronFraction / p.PrecursorDecayConstant))
		Expect(first.Precursor).To(BeNumerically("~", 0.065, 1e-15))
		Expect(s.Integrator()).To(Equal("euler"))
		Expect(s.TotalSteps()).To(Equal(500))
		Expect(s.Done()).To(BeFalse())
	})

	DescribeTable("rejects parameters outside their domain",
		func(mod func(p *kinetics.Parameters)) {
			p := baseParams()
			mod(&p)
			s, err := engine.Reset(p)
			Expect(err).To(MatchError(kinetics.ErrInvalidParameter))
			Expect(s).To(BeNil())
		},
		Entry("beta <= 0", func(p *kinetics.Parameters) { p.DelayedNeutronFraction = 0 }),
		Entry("lifetime <= 0", func(p *kinetics.Parameters) { p.PromptNeutronLifetime = -1e-4 }),
		Entry("lambda <= 0", func(p *kinetics.Parameters) { p.PrecursorDecayConstant = 0 }),
		Entry("dt <= 0", func(p *kinetics.Parameters) { p.TimeStep = 0 }),
		Entry("total <= 0", func(p *kinetics.Parameters) { p.TotalSimulationTime = -1 }),
	)

	It("rejects unknown integrators", func() {
		_, err := engine.Reset(baseParams(), engine.WithIntegrator("leapfrog"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Step", func() {
	It("keeps time on the i·dt grid", func() {
		p := baseParams()
		p.TimeStep = 0.03
		s, err := engine.RunTo(ctx, p, p.TotalSimulationTime)
		Expect(err).NotTo(HaveOccurred())
		for i, smp := range s.Samples() {
			Expect(smp.Time).To(Equal(float64(i) * p.TimeStep))
		}
	})

	It("stops at the total simulation time", func() {
		p := baseParams()
		p.TotalSimulationTime = 1
		s, _ := engine.Reset(p)

		for s.Step() {
		}
		Expect(s.Done()).To(BeTrue())
		Expect(s.Len()).To(Equal(11))
		Expect(s.Last().Time).To(BeNumerically("~", 1.0, 1e-12))

		last := s.Last()
		Expect(s.Step()).To(BeFalse())
		Expect(s.Len()).To(Equal(11))
		Expect(s.Last()).To(Equal(last))
	})

	It("follows the explicit Euler update", func() {
		p := baseParams()
		s, _ := engine.Reset(p)
		Expect(s.Step()).To(BeTrue())

		beta, lifetime, lambda, dt := 0.0065, 1e-4, 0.1, 0.1
		c0 := beta / lambda
		rho := 0.0005 * 0.1
		wantC := c0 + dt*((beta/lifetime)*1.0-lambda*c0)
		wantP := math.Max(1.0+dt*(((rho-beta)/lifetime)*1.0+lambda*c0), kinetics.PowerFloor)

		smp := s.At(1)
		Expect(smp.Precursor).To(BeNumerically("~", wantC, 1e-12))
		Expect(smp.Power).To(BeNumerically("~", wantP, 1e-12))
		Expect(smp.ReactivityDollars).To(BeNumerically("~", rho/beta, 1e-12))
	})

	It("never lets power fall below the floor", func() {
		for _, p := range []kinetics.Parameters{baseParams(), normalized(baseParams())} {
			s, _ := engine.RunTo(ctx, p, p.TotalSimulationTime)
			for _, smp := range s.Samples() {
				Expect(smp.Power).To(BeNumerically(">=", kinetics.PowerFloor))
			}
		}
	})

	It("does not expose its buffer through Samples", func() {
		s, _ := engine.Reset(baseParams())
		s.Step()
		view := s.Samples()
		Expect(cap(view)).To(Equal(len(view)))

		_ = append(view, engine.Sample{Time: -1})
		s.Step()
		Expect(s.At(2).Time).To(BeNumerically("~", 0.2, 1e-12))
	})
})

var _ = Describe("Replay", func() {
	It("is deterministic", func() {
		p := baseParams()
		a, _ := engine.RunTo(ctx, p, 50)
		b, _ := engine.RunTo(ctx, p, 50)
		Expect(a.Samples()).To(Equal(b.Samples()))
	})

	It("matches interleaved stepping", func() {
		p := baseParams()
		direct, _ := engine.RunTo(ctx, p, 30)

		s, _ := engine.Reset(p)
		for range 17 {
			s.Step()
		}
		Expect(s.RunTo(ctx, 12)).To(Succeed())
		for range 40 {
			s.Step()
		}
		Expect(s.RunTo(ctx, 30)).To(Succeed())
		Expect(s.Samples()).To(Equal(direct.Samples()))
	})

	It("continuing from T equals replaying to T'", func() {
		p := baseParams()
		s, _ := engine.RunTo(ctx, p, 12.5)
		Expect(s.Last().Time).To(BeNumerically("~", 12.5, 1e-9))
		Expect(s.RunTo(ctx, 41)).To(Succeed())

		direct, _ := engine.RunTo(ctx, p, 41)
		Expect(s.Samples()).To(Equal(direct.Samples()))
	})

	It("clamps the target to the run length", func() {
		p := baseParams()
		p.TotalSimulationTime = 2
		s, _ := engine.RunTo(ctx, p, 1000)
		Expect(s.Len()).To(Equal(21))
		Expect(s.Done()).To(BeTrue())
		Expect(s.Progress()).To(Equal(1.0))
	})

	It("runs to completion for targets far beyond the run length", func() {
		p := baseParams()
		p.TotalSimulationTime = 2
		for _, target := range []float64{1e19, 1e300, math.Inf(1)} {
			s, err := engine.RunTo(ctx, p, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(21), "target %g", target)
			Expect(s.Last().Time).To(BeNumerically("~", 2, 1e-12))
			Expect(s.Done()).To(BeTrue())
		}
	})

	It("takes no steps for a NaN target", func() {
		s, err := engine.RunTo(ctx, baseParams(), math.NaN())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(1))
	})

	It("keeps only the initial sample for non-positive targets", func() {
		s, _ := engine.RunTo(ctx, baseParams(), -3)
		Expect(s.Len()).To(Equal(1))

		s, _ = engine.RunTo(ctx, baseParams(), 0)
		Expect(s.Len()).To(Equal(1))
	})

	It("does not rewind when the target lies in the past", func() {
		s, _ := engine.RunTo(ctx, baseParams(), 5)
		Expect(s.RunTo(ctx, 1)).To(Succeed())
		Expect(s.Len()).To(Equal(51))
	})

	It("returns the partial run on cancellation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s, err := engine.RunTo(cctx, baseParams(), 50)
		Expect(err).To(MatchError(context.Canceled))
		Expect(s).NotTo(BeNil())
		Expect(s.Len()).To(Equal(1))
	})

	It("fails validation before any replay", func() {
		p := baseParams()
		p.TimeStep = 0
		s, err := engine.RunTo(ctx, p, 10)
		Expect(err).To(MatchError(kinetics.ErrInvalidParameter))
		Expect(s).To(BeNil())
	})
})

var _ = Describe("Scenarios", func() {
	It("holds steady state with no insertion", func() {
		p := normalized(baseParams())
		p.ReactivityInsertionRate = 0

		s, _ := engine.RunTo(ctx, p, p.TotalSimulationTime)
		c0 := p.InitialPrecursor()
		for _, smp := range s.Samples() {
			Expect(smp.Power).To(BeNumerically("~", 1.0, 1e-12))
			Expect(smp.Precursor).To(BeNumerically("~", c0, 1e-12))
			Expect(smp.ReactivityDollars).To(Equal(0.0))
		}
	})

	Context("delayed-critical ramp", func() {
		It("reaches 0.769 dollars at the end of the ramp", func() {
			s, _ := engine.RunTo(ctx, baseParams(), 50)
			at10 := sampleAt(s, 10)
			Expect(at10.ReactivityDollars).To(BeNumerically("~", 0.0005*10/0.0065, 1e-9))
			Expect(at10.Power).To(BeNumerically(">=", kinetics.PowerFloor))
			Expect(math.IsInf(at10.Power, 0)).To(BeFalse())
			Expect(sampleAt(s, 50).ReactivityDollars).To(Equal(at10.ReactivityDollars))
		})

		It("grows power above nominal without prompt criticality", func() {
			s, _ := engine.RunTo(ctx, normalized(baseParams()), 50)
			Expect(sampleAt(s, 10).Power).To(BeNumerically(">", 1.0))
			Expect(s.Summary().PromptCritical).To(BeFalse())
		})
	})

	Context("prompt-critical excursion", func() {
		var s *engine.Simulation

		BeforeEach(func() {
			p := baseParams()
			p.ReactivityInsertionRate = 0.002
			p.ReactivityInsertionDuration = 4
			p.TotalSimulationTime = 10
			s, _ = engine.RunTo(ctx, p, p.TotalSimulationTime)
		})

		It("crosses one dollar during the ramp", func() {
			sum := s.Summary()
			Expect(sum.PromptCritical).To(BeTrue())
			Expect(sum.PromptCriticalTime).To(BeNumerically(">", 3.2))
			Expect(sum.PromptCriticalTime).To(BeNumerically("<", 3.35))
			Expect(sampleAt(s, 4).ReactivityDollars).To(BeNumerically("~", 4*0.002/0.0065, 1e-9))
		})

		It("runs away once past one dollar", func() {
			Expect(sampleAt(s, 4).Power).To(BeNumerically(">", 100*sampleAt(s, 1).Power))
			Expect(sampleAt(s, 10).Power).To(BeNumerically(">", sampleAt(s, 4).Power))
		})
	})

	It("decays power under negative insertion", func() {
		p := normalized(baseParams())
		p.InitialReactivity = 0.003
		p.ReactivityInsertionRate = -0.001
		p.ReactivityInsertionDuration = 5
		p.TotalSimulationTime = 20

		s, _ := engine.RunTo(ctx, p, p.TotalSimulationTime)
		samples := s.Samples()
		for i := 1; i < len(samples); i++ {
			if samples[i-1].Time < 3 {
				continue
			}
			Expect(samples[i].Power).To(BeNumerically("<=", samples[i-1].Power))
		}
		Expect(s.Last().Power).To(BeNumerically("<", 1.0))
		Expect(s.Last().ReactivityDollars).To(BeNumerically("~", -0.002/0.0065, 1e-9))
	})

	It("lets power overflow instead of clamping the high end", func() {
		p := baseParams()
		p.InitialReactivity = 0.02
		p.ReactivityInsertionRate = 0
		p.ReactivityInsertionDuration = 0
		p.TotalSimulationTime = 60

		var buf bytes.Buffer
		s, err := engine.RunTo(ctx, p, 60, engine.WithLogger(logging.NewLogger("info", &buf)))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(601))

		sawInf := false
		for _, smp := range s.Samples() {
			if math.IsInf(smp.Power, 1) {
				sawInf = true
			}
			if smp.Finite() {
				Expect(smp.Power).To(BeNumerically(">=", kinetics.PowerFloor))
			}
		}
		Expect(sawInf).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("non-finite state"))
	})
})

var _ = Describe("Alternate integrator", func() {
	It("is only used when selected", func() {
		p := normalized(baseParams())
		euler, _ := engine.RunTo(ctx, p, 20)
		rk4, err := engine.RunTo(ctx, p, 20, engine.WithIntegrator("rk4"))
		Expect(err).NotTo(HaveOccurred())
		Expect(rk4.Integrator()).To(Equal("rk4"))

		Expect(rk4.At(0)).To(Equal(euler.At(0)))
		Expect(rk4.Last().Power).NotTo(Equal(euler.Last().Power))
		Expect(rk4.Last().Power).To(BeNumerically("~", euler.Last().Power, 0.01))
	})

	It("keeps the steady state", func() {
		p := normalized(baseParams())
		p.ReactivityInsertionRate = 0
		s, _ := engine.RunTo(ctx, p, 50, engine.WithIntegrator("rk4"))
		Expect(s.Last().Power).To(BeNumerically("~", 1.0, 1e-12))
	})
})
