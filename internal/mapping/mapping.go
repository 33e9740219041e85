// Package mapping resolves which vendor-profile mix a buyer profile uses at a
// given month, and the daily rates that follow from it.
package mapping

import (
	"math"

	"tender-cost-engine/internal/model"
)

// ResolveAt returns the mix active at month, or nil when none applies.
//
// Flat mixes are always active. Month periods return the period covering
// month, falling back to the latest period already started. Year labels
// match "Anno y" exactly, falling back to the highest open-ended "Anno N+"
// with N <= y.
func ResolveAt(m model.ProfileMapping, month int) model.Mix {
	switch m.Kind {
	case model.MappingPeriods:
		return resolvePeriods(m.Periods, month)
	case model.MappingYearLabels:
		return resolveYears(m.Years, month)
	default:
		if len(m.Flat) == 0 {
			return nil
		}
		return m.Flat
	}
}

func resolvePeriods(periods []model.MappingPeriod, month int) model.Mix {
	var fallback *model.MappingPeriod
	for i := range periods {
		p := &periods[i]
		if p.MonthStart <= month && (p.MonthEnd == 0 || month <= p.MonthEnd) {
			return p.Mix
		}
		if p.MonthStart <= month && (fallback == nil || p.MonthStart >= fallback.MonthStart) {
			fallback = p
		}
	}
	if fallback == nil {
		return nil
	}
	return fallback.Mix
}

func resolveYears(years []model.YearLabel, month int) model.Mix {
	year := YearOf(month)
	var best *model.YearLabel
	for i := range years {
		y := &years[i]
		if y.Year == 0 {
			continue
		}
		if !y.OpenEnded && y.Year == year {
			return y.Mix
		}
		if y.OpenEnded && y.Year <= year && (best == nil || y.Year >= best.Year) {
			best = y
		}
	}
	if best == nil {
		return nil
	}
	return best.Mix
}

// YearOf returns the 1-based contract year of a 1-based month.
func YearOf(month int) int {
	return (month-1)/12 + 1
}

// InflationFactor is the year-on-year escalation for the contract year that
// contains month: 1.0 in the first year, (1+pct/100)^n in year n+1.
func InflationFactor(month int, inflationPct float64) float64 {
	if inflationPct <= 0 {
		return 1.0
	}
	return math.Pow(1+inflationPct/100, float64((month-1)/12))
}

// Rates looks up vendor daily rates with a default for unknown or unset
// profiles.
type Rates struct {
	Table   map[string]float64
	Default float64
}

// Of returns the rate of profile, or the default when it has none.
func (r Rates) Of(profile string) float64 {
	if rate, ok := r.Table[profile]; ok && rate > 0 {
		return rate
	}
	return r.Default
}

// Blend is the pct-weighted sum of vendor rates across mix. It is not
// renormalized to the mix total.
func (r Rates) Blend(mix model.Mix) float64 {
	var rate float64
	for _, e := range mix {
		rate += e.Pct / 100 * r.Of(e.VendorProfile)
	}
	return rate
}

// RateAt is the daily rate of a buyer profile at month, inflation included.
// Without an active mix the buyer profile is priced directly.
func RateAt(profile string, m model.ProfileMapping, month int, r Rates, inflationPct float64) float64 {
	mix := ResolveAt(m, month)
	if len(mix) == 0 {
		return r.Of(profile) * InflationFactor(month, inflationPct)
	}
	return r.Blend(mix) * InflationFactor(month, inflationPct)
}

// TimelineRate is the duration-weighted average daily rate across the whole
// mapping timeline. Each span is inflated by the contract year it starts in.
// It falls back to the default rate when the timeline covers no months.
func TimelineRate(m model.ProfileMapping, r Rates, durationMonths int, inflationPct float64) float64 {
	var weighted float64
	var months int
	for _, span := range m.Timeline(durationMonths) {
		n := span.MonthEnd - span.MonthStart + 1
		if n <= 0 || len(span.Mix) == 0 {
			continue
		}
		weighted += r.Blend(span.Mix) * InflationFactor(span.MonthStart, inflationPct) * float64(n)
		months += n
	}
	if months <= 0 {
		return r.Default
	}
	return weighted / float64(months)
}

// ProfileRate is the contract-average rate of a buyer profile: its mapping
// timeline when it has one, its own rate otherwise.
func ProfileRate(profile string, mappings map[string]model.ProfileMapping, r Rates, durationMonths int, inflationPct float64) float64 {
	if m, ok := mappings[profile]; ok && !m.Empty() {
		return TimelineRate(m, r, durationMonths, inflationPct)
	}
	return r.Of(profile)
}

// MixRate blends buyer-profile rates across a catalog item's profile mix,
// normalized by the shares actually given. Entries with no share are
// skipped; an empty mix prices at the default rate.
func MixRate(mix []model.ProfileShare, mappings map[string]model.ProfileMapping, r Rates, durationMonths int, inflationPct float64) float64 {
	var weighted, total float64
	for _, s := range mix {
		pct := s.Pct / 100
		if pct <= 0 {
			continue
		}
		weighted += pct * ProfileRate(s.Profile, mappings, r, durationMonths, inflationPct)
		total += pct
	}
	if total <= 0 {
		return r.Default
	}
	return weighted / total
}
