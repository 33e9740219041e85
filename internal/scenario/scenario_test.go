package scenario

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/margin"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/overhead"
	"tender-cost-engine/internal/teamcost"
)

var _ = Describe("Generate", func() {
	var (
		ctx context.Context
		in  Input
	)

	names := func(s []model.Scenario) []string {
		out := make([]string, len(s))
		for i := range s {
			out[i] = s[i].Name
		}
		return out
	}

	BeforeEach(func() {
		ctx = context.Background()
		in = Input{
			Offer:            margin.Offer{BaseAmount: 200_000},
			CurrentTotalCost: 100_000,
			ReuseFactor:      0.1,
			VolumeFactor:     1.0,
		}
	})

	Context("without team context", func() {
		It("returns the three scenarios in order", func() {
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(got)).To(Equal([]string{"Balanced", "Conservative", "Aggressive"}))
		})

		It("extrapolates the current cost linearly", func() {
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())

			Expect(got[0].TotalCost).To(Equal(100_000.0))
			Expect(got[0].ReuseFactor).To(Equal(0.1))
			Expect(got[0].VolumeFactor).To(Equal(1.0))

			// 100000 / 0.9 * 1.05 * 0.95
			Expect(got[1].TotalCost).To(BeNumerically("~", 110_833.33, 0.01))
			Expect(got[1].ReuseFactor).To(Equal(0.05))
			Expect(got[1].VolumeFactor).To(Equal(1.05))

			// 100000 / 0.9 * 0.95 * 0.85
			Expect(got[2].TotalCost).To(BeNumerically("~", 89_722.22, 0.01))
		})

		It("prices every scenario at zero discount", func() {
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0].Revenue).To(Equal(200_000.0))
			Expect(got[0].Margin).To(Equal(100_000.0))
			Expect(got[0].MarginPct).To(Equal(50.0))
		})

		It("treats a non-positive volume factor as 1", func() {
			in.VolumeFactor = 0
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0].VolumeFactor).To(Equal(MinVolume))
			Expect(got[0].TotalCost).To(BeNumerically("~", 100_000.0/0.9*0.5*0.9, 0.01))
		})

		It("uses the current cost as is when nothing was reused", func() {
			in.ReuseFactor = 1
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0].ReuseFactor).To(Equal(MaxReuse))
			Expect(got[0].TotalCost).To(BeNumerically("~", 100_000*1.0*0.2, 0.01))
		})
	})

	DescribeTable("clamps the factors",
		func(reuse, volume float64) {
			in.ReuseFactor, in.VolumeFactor = reuse, volume
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			for _, s := range got {
				Expect(s.ReuseFactor).To(BeNumerically(">=", MinReuse))
				Expect(s.ReuseFactor).To(BeNumerically("<=", MaxReuse))
				Expect(s.VolumeFactor).To(BeNumerically(">=", MinVolume))
				Expect(s.VolumeFactor).To(BeNumerically("<=", MaxVolume))
			}
		},
		Entry("defaults", 0.0, 1.0),
		Entry("reuse at the floor", 0.02, 1.0),
		Entry("reuse above the ceiling", 0.95, 1.0),
		Entry("volume above the ceiling", 0.3, 1.8),
		Entry("volume below the floor", 0.3, 0.2),
	)

	Context("with team context", func() {
		BeforeEach(func() {
			in.Team = &teamcost.Input{
				Members: []model.TeamMember{{ProfileID: "dev", Label: "Developer", FTE: 2}},
				Volume:  model.VolumeAdjustments{Global: 1},
				Rates:   mapping.Rates{Table: map[string]float64{"dev": 300}, Default: 250},
				Params:  model.Parameters{DurationMonths: 12, DaysPerFTE: 220, DefaultDailyRate: 250},
			}
			in.ReuseFactor = 0
			in.CatalogCost = 10_000
			in.Overhead = overhead.Input{GovernancePct: 0.04, RiskPct: 0.03}
		})

		It("re-runs the team cost and adds catalog and overhead", func() {
			got, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())

			// 132000 team + 10000 catalog, 4% governance, 3% risk on both
			Expect(got[0].TotalCost).To(BeNumerically("~", 142_000*1.04*1.03, 0.01))

			// conservative: reuse stays at 0, volume 1.05
			Expect(got[1].ReuseFactor).To(Equal(0.0))
			Expect(got[1].TotalCost).To(BeNumerically("~", (132_000*1.05+10_000)*1.04*1.03, 0.01))

			// aggressive: reuse 0.05, volume 0.95
			Expect(got[2].TotalCost).To(BeNumerically("~", (132_000*0.95*0.95+10_000)*1.04*1.03, 0.01))
		})

		It("leaves the caller's team input untouched", func() {
			_, err := Generate(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Team.Volume.Global).To(Equal(1.0))
			Expect(in.Team.ReuseFactor).To(Equal(0.0))
		})

		It("fails on an invalid duration", func() {
			in.Team.Params.DurationMonths = 0
			_, err := Generate(ctx, in)
			Expect(err).To(HaveOccurred())
		})
	})
})
