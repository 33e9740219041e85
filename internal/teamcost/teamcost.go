// Package teamcost prices a staffed team over the contract, interval by
// interval, and rolls the result up by buyer profile, vendor profile and
// work package.
//
// Days are rounded to cents at three points: the whole interval when no mix
// applies, each vendor slice of an interval, and each work package share of
// a slice. Costs are computed from the rounded days. The grand totals are
// summed from the work package shares only, so the three views may differ
// from them by a few cents.
package teamcost

import (
	"context"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"tender-cost-engine/internal/logging"
	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rounding"
	"tender-cost-engine/internal/schedule"
)

// UnallocatedID is the work package bucket of members with no allocation.
const UnallocatedID = "__unallocated__"

const unallocatedLabel = "Unallocated (member without work package)"

// Input holds everything a team evaluation reads. Calculate never modifies it.
type Input struct {
	Members     []model.TeamMember
	Volume      model.VolumeAdjustments
	ReuseFactor float64
	Mappings    map[string]model.ProfileMapping
	Rates       mapping.Rates
	Params      model.Parameters
	// WorkPackageLabels names the by_tow entries; ids without a label are
	// shown as is.
	WorkPackageLabels map[string]string
}

// FromPlan builds the input of a normalized plan.
func FromPlan(p *model.BusinessPlan, rates mapping.Rates) Input {
	labels := make(map[string]string, len(p.WorkPackages))
	for _, wp := range p.WorkPackages {
		labels[wp.ID] = wp.Label
	}
	return Input{
		Members:           p.TeamComposition,
		Volume:            p.VolumeAdjustments,
		ReuseFactor:       p.ReuseFactor,
		Mappings:          p.ProfileMappings,
		Rates:             rates,
		Params:            p.Parameters(),
		WorkPackageLabels: labels,
	}
}

// slice is one vendor profile's part of one member interval.
type slice struct {
	vendor    string
	start     int
	end       int
	daysRaw   float64
	daysBase  float64
	days      float64 // rounded
	cost      float64
	rate      float64
	pFactor   float64
	effFactor float64
}

// share is one work package's part of a slice.
type share struct {
	tow      string
	ratio    float64
	daysRaw  float64
	daysBase float64
	days     float64 // rounded again
	cost     float64
	slice    int // index into memberResult.slices
}

type memberResult struct {
	member    model.TeamMember
	slices    []slice
	shares    []share
	intervals []model.IntervalRecord
	cost      float64 // sum of unrounded slice costs
	days      float64 // sum of unrounded effective days
	avgFTE    float64
}

// Calculate runs the team cost over every member and interval. The only
// error is an invalid duration, or the context being done.
func Calculate(ctx context.Context, in Input) (*model.CostResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("teamcost")

	intervals, err := schedule.Build(in.Params.DurationMonths, in.Volume.Periods, in.Mappings)
	if err != nil {
		return nil, err
	}
	log.V(logging.DEBUG).Info("Built interval grid", "intervals", len(intervals), "members", len(in.Members))

	results := make([]memberResult, len(in.Members))
	g, gctx := errgroup.WithContext(ctx)
	for i := range in.Members {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = in.evaluateMember(in.Members[i], intervals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := in.merge(results)
	log.V(logging.DEBUG).Info("Team cost calculated",
		"totalCost", res.TotalCost, "totalDays", res.TotalDays, "vendorProfiles", len(res.ByVendorProfile))
	return res, nil
}

func (in Input) evaluateMember(m model.TeamMember, intervals []schedule.Interval) memberResult {
	out := memberResult{member: m}
	params := in.Params
	reuse := 1 - in.ReuseFactor
	allocation := allocationOf(m)
	allocTotal := m.TowAllocation.Total()
	var weightedFTE float64

	for _, iv := range intervals {
		adj := in.Volume.PeriodAt(iv.Start)
		pFactor := adj.ProfileFactor(m.ProfileID)
		towFactor := 1.0
		if allocTotal > 0 {
			towFactor = 0
			for _, s := range m.TowAllocation {
				if s.Pct > 0 {
					towFactor += s.Pct / allocTotal * adj.TowFactor(s.TowID)
				}
			}
		}
		inflation := mapping.InflationFactor(iv.Start, params.InflationPct)
		effFactor := towFactor * reuse
		factor := in.Volume.Global * pFactor * effFactor

		rawDays := m.FTE * float64(params.DaysPerFTE) * iv.Years
		baseDays := rawDays * in.Volume.Global * pFactor
		effDays := baseDays * effFactor

		weightedFTE += m.FTE * factor * float64(iv.Months)
		out.days += effDays

		first := len(out.slices)
		mix := mapping.ResolveAt(in.Mappings[m.ProfileID], iv.Start)
		if len(mix) == 0 {
			rate := in.Rates.Of(m.ProfileID) * inflation
			days := rounding.Round2(effDays)
			out.slices = append(out.slices, slice{
				vendor: m.ProfileID, start: iv.Start, end: iv.End,
				daysRaw: rawDays, daysBase: baseDays, days: days, cost: days * rate,
				rate: rate, pFactor: pFactor, effFactor: effFactor,
			})
			out.intervals = append(out.intervals, model.IntervalRecord{
				Member: m.Label, Profile: m.ProfileID, VendorProfile: m.ProfileID,
				Start: iv.Start, End: iv.End, Months: iv.Months,
				FTEBase: m.FTE, Factor: factor, FTEEffective: m.FTE * factor,
				Rate: rate, Cost: days * rate,
			})
		} else {
			for _, e := range mix {
				pct := e.Pct / 100
				rate := in.Rates.Of(e.VendorProfile) * inflation
				days := rounding.Round2(effDays * pct)
				out.slices = append(out.slices, slice{
					vendor: e.VendorProfile, start: iv.Start, end: iv.End,
					daysRaw: rawDays * pct, daysBase: baseDays * pct, days: days, cost: days * rate,
					rate: rate, pFactor: pFactor, effFactor: effFactor,
				})
				out.intervals = append(out.intervals, model.IntervalRecord{
					Member: m.Label, Profile: m.ProfileID, VendorProfile: e.VendorProfile,
					Start: iv.Start, End: iv.End, Months: iv.Months,
					FTEBase: m.FTE, Factor: factor * pct, FTEEffective: m.FTE * factor * pct,
					Rate: rate, Cost: days * rate,
				})
			}
		}

		for i := first; i < len(out.slices); i++ {
			s := out.slices[i]
			out.cost += s.cost
			for _, a := range allocation {
				days := rounding.Round2(s.days * a.ratio)
				out.shares = append(out.shares, share{
					tow:      a.tow,
					ratio:    a.ratio,
					daysRaw:  s.daysRaw * a.ratio,
					daysBase: s.daysBase * a.ratio,
					days:     days,
					cost:     days * s.rate,
					slice:    i,
				})
			}
		}
	}

	if params.DurationMonths > 0 {
		out.avgFTE = weightedFTE / float64(params.DurationMonths)
	}
	return out
}

type allocationShare struct {
	tow   string
	ratio float64
}

// allocationOf returns the member's positive work package shares as ratios
// of their total, or the whole member in the unallocated bucket.
func allocationOf(m model.TeamMember) []allocationShare {
	total := m.TowAllocation.Total()
	if total <= 0 {
		return []allocationShare{{tow: UnallocatedID, ratio: 1}}
	}
	out := make([]allocationShare, 0, len(m.TowAllocation))
	for _, s := range m.TowAllocation {
		if s.Pct > 0 {
			out = append(out, allocationShare{tow: s.TowID, ratio: s.Pct / total})
		}
	}
	return out
}

// merge reduces the member results in member order, so the output does not
// depend on which goroutine finished first.
func (in Input) merge(results []memberResult) *model.CostResult {
	res := &model.CostResult{
		ByProfile:       map[string]model.ProfileRollup{},
		ByTow:           map[string]model.Rollup{},
		ByVendorProfile: map[string]model.Rollup{},
	}
	profileCost := map[string]float64{}
	profileDays := map[string]float64{}
	profileFTE := map[string]float64{}
	var totalCost, totalDays, totalDaysBase, totalFTEAdjusted float64

	for _, r := range results {
		label := r.member.Label
		for i := range r.slices {
			s := &r.slices[i]
			v := res.ByVendorProfile[s.vendor]
			if v.Label == "" {
				v.Label = vendorLabel(s.vendor)
			}
			v.Cost += s.cost
			v.Days += s.days
			v.DaysBase += s.daysBase
			v.DaysRaw += s.daysRaw
			v.Contributions = append(v.Contributions, contribution(label, s.start, s.end, s.days, s.daysBase, s.daysRaw, s.cost, s.rate, 0, s.pFactor, s.effFactor))
			res.ByVendorProfile[s.vendor] = v
		}

		for _, sh := range r.shares {
			t := res.ByTow[sh.tow]
			if t.Label == "" {
				t.Label = in.towLabel(sh.tow)
			}
			t.Cost += sh.cost
			t.Days += sh.days
			t.DaysBase += sh.daysBase
			t.DaysRaw += sh.daysRaw
			s := &r.slices[sh.slice]
			t.Contributions = append(t.Contributions, contribution(label, s.start, s.end, sh.days, sh.daysBase, sh.daysRaw, sh.cost, s.rate, sh.ratio*100, s.pFactor, s.effFactor))
			res.ByTow[sh.tow] = t

			totalCost += sh.cost
			totalDays += sh.days
			totalDaysBase += sh.daysBase
		}

		pid := r.member.ProfileID
		profileCost[pid] += r.cost
		profileDays[pid] += r.days
		profileFTE[pid] += r.avgFTE
		p := res.ByProfile[pid]
		p.FTEOriginal += r.member.FTE
		res.ByProfile[pid] = p

		res.TotalFTEOriginal += r.member.FTE
		totalFTEAdjusted += r.avgFTE
		res.Intervals = append(res.Intervals, r.intervals...)
	}

	for pid, p := range res.ByProfile {
		p.Cost = rounding.Round2(profileCost[pid])
		p.Days = rounding.Round2(profileDays[pid])
		p.FTEAdjusted = rounding.Round2(profileFTE[pid])
		res.ByProfile[pid] = p
	}
	for id, v := range res.ByVendorProfile {
		res.ByVendorProfile[id] = roundRollup(v)
	}
	for id, t := range res.ByTow {
		res.ByTow[id] = roundRollup(t)
	}
	for i := range res.Intervals {
		iv := &res.Intervals[i]
		iv.Rate = rounding.Round2(iv.Rate)
		iv.Cost = rounding.Round2(iv.Cost)
		iv.FTEEffective = rounding.RoundTo(iv.FTEEffective, 4)
		iv.Factor = rounding.RoundTo(iv.Factor, 4)
	}

	res.TotalCost = rounding.Round2(totalCost)
	res.TotalDays = rounding.Round2(totalDays)
	res.TotalDaysBase = rounding.Round2(totalDaysBase)
	res.TotalFTEAdjusted = rounding.Round2(totalFTEAdjusted)
	return res
}

func contribution(member string, start, end int, days, daysBase, daysRaw, cost, rate, allocPct, pFactor, effFactor float64) model.Contribution {
	return model.Contribution{
		Member:           member,
		Start:            start,
		End:              end,
		Days:             days,
		DaysBase:         rounding.Round2(daysBase),
		DaysRaw:          rounding.Round2(daysRaw),
		Cost:             rounding.Round2(cost),
		Rate:             rounding.Round2(rate),
		AllocationPct:    rounding.Round2(allocPct),
		ProfileFactor:    pFactor,
		EfficiencyFactor: rounding.RoundTo(effFactor, 4),
	}
}

func roundRollup(r model.Rollup) model.Rollup {
	r.Cost = rounding.Round2(r.Cost)
	r.Days = rounding.Round2(r.Days)
	r.DaysBase = rounding.Round2(r.DaysBase)
	r.DaysRaw = rounding.Round2(r.DaysRaw)
	return r
}

// vendorLabel drops the practice prefix of ids like "dev:senior".
func vendorLabel(id string) string {
	if _, after, ok := strings.Cut(id, ":"); ok && after != "" {
		return after
	}
	return id
}

func (in Input) towLabel(id string) string {
	if id == UnallocatedID {
		return unallocatedLabel
	}
	if l := in.WorkPackageLabels[id]; l != "" {
		return l
	}
	return id
}
