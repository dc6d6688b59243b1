package rps

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Engine", func() {
	var eng *Engine

	BeforeEach(func() {
		eng = NewEngine(0)
	})

	Context("with alternating rock and paper columns at full competition", func() {
		var g *Grid

		BeforeEach(func() {
			var err error
			g, err = parseGrid(
				"RPRP",
				"RPRP",
				"RPRP",
				"RPRP",
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("empties every rock in exactly one step", func() {
			stats := eng.Step(g, Probabilities{Competition: 1}, newRand(1))

			Expect(stats.Dominated).To(Equal(8))
			Expect(stats.Moved).To(BeZero())
			want, err := parseGrid(
				".P.P",
				".P.P",
				".P.P",
				".P.P",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Equal(want)).To(BeTrue())
		})

		It("gives the same result for any random stream", func() {
			for seed := uint64(0); seed < 5; seed++ {
				h := g.Clone()
				NewEngine(1).Step(h, Probabilities{Competition: 1}, newRand(seed))
				Expect(h.Counts()).To(Equal(Counts{Empty: 8, Paper: 8}))
			}
		})
	})

	Context("on an all-empty grid", func() {
		It("stays empty for any settlement probability", func() {
			g, err := NewGrid(16, 16)
			Expect(err).NotTo(HaveOccurred())
			rng := newRand(3)

			for _, ps := range []float64{0, 0.3, 1} {
				for i := 0; i < 10; i++ {
					stats := eng.Step(g, Probabilities{Settle: ps, Competition: 1, Mobility: 1}, rng)
					Expect(stats).To(Equal(StepStats{}))
				}
				Expect(g.Counts()[Empty]).To(Equal(256))
			}
		})
	})

	Context("when a cell qualifies for domination and mobility", func() {
		It("resolves as domination", func() {
			g, err := parseGrid(
				"...",
				".RP",
				"...",
			)
			Expect(err).NotTo(HaveOccurred())

			stats := eng.Step(g, Probabilities{Competition: 1, Mobility: 1}, newRand(4))

			Expect(stats.Dominated).To(Equal(1))
			// only the paper moves; the rock was claimed by domination first
			Expect(stats.Moved).To(Equal(1))
		})
	})

	Context("over many random steps", func() {
		It("keeps every cell in one of the four states", func() {
			rng := newRand(12)
			g, err := Seed(48, 32, 0.5, rng)
			Expect(err).NotTo(HaveOccurred())
			p := Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25}

			for i := 0; i < 40; i++ {
				eng.Step(g, p, rng)
				Expect(g.Counts().Total()).To(Equal(48 * 32))
				for _, s := range g.Cells() {
					Expect(s.Valid()).To(BeTrue())
				}
			}
		})

		It("never lets domination add occupants", func() {
			rng := newRand(13)
			g, err := Seed(48, 32, 0.9, rng)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 20; i++ {
				before := g.Counts().Occupied()
				stats := eng.Step(g, Probabilities{Competition: 0.7}, rng)
				Expect(stats.Settled).To(BeZero())
				Expect(g.Counts().Occupied()).To(Equal(before - stats.Dominated))
			}
		})
	})
})

var _ = Describe("Entropy", func() {
	p := Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25}

	DescribeTable("is exactly zero on uniform grids",
		func(s Species) {
			g, err := NewGrid(7, 5)
			Expect(err).NotTo(HaveOccurred())
			for i := range g.Cells() {
				g.Cells()[i] = s
			}
			Expect(Entropy(g, p)).To(BeZero())
		},
		Entry("empty", Empty),
		Entry("rock", Rock),
		Entry("paper", Paper),
		Entry("scissors", Scissors),
	)

	It("is bit-identical across calls and worker counts", func() {
		g, err := Seed(64, 40, 0.6, newRand(21))
		Expect(err).NotTo(HaveOccurred())

		first := math.Float64bits(Entropy(g, p))
		Expect(math.Float64bits(Entropy(g, p))).To(Equal(first))
		Expect(math.Float64bits(EntropyWorkers(g, p, 1))).To(Equal(first))
		Expect(math.Float64bits(EntropyWorkers(g, p, 3))).To(Equal(first))
	})
})
