// Package overhead turns team and catalog cost into the full delivery cost:
// governance, risk contingency and subcontracting on top of the base.
package overhead

import (
	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rounding"
)

// Input is the cost base and the overhead settings applied to it.
type Input struct {
	TeamCost    float64
	CatalogCost float64
	// GovernancePct, RiskPct and SubcontractQuota are fractions, 0.04 for 4%.
	GovernancePct    float64
	RiskPct          float64
	SubcontractQuota float64
	Governance       model.Governance
	// ReuseFactor and TeamFTE feed the governance modes that need them.
	ReuseFactor float64
	TeamFTE     float64
	Rates       mapping.Rates
	Params      model.Parameters
}

// FromPlan reads the overhead settings of a normalized plan.
func FromPlan(p *model.BusinessPlan, rates mapping.Rates, teamCost, catalogCost float64) Input {
	in := Input{
		TeamCost:         teamCost,
		CatalogCost:      catalogCost,
		SubcontractQuota: p.Overhead.SubcontractQuotaPct,
		Governance:       p.Overhead.Governance,
		ReuseFactor:      p.ReuseFactor,
		TeamFTE:          p.TotalFTE(),
		Rates:            rates,
		Params:           p.Parameters(),
	}
	if p.Overhead.GovernancePct != nil {
		in.GovernancePct = *p.Overhead.GovernancePct
	}
	if p.Overhead.RiskContingencyPct != nil {
		in.RiskPct = *p.Overhead.RiskContingencyPct
	}
	return in
}

// Calculate returns the cost breakdown. Risk is charged on the base plus
// governance; subcontracting on the base alone.
func Calculate(in Input) model.TotalCostBreakdown {
	base := in.TeamCost + in.CatalogCost
	governance, method := Governance(in)
	risk := (base + governance) * in.RiskPct
	subcontract := base * in.SubcontractQuota

	return model.TotalCostBreakdown{
		Team:             rounding.Round2(in.TeamCost),
		Catalog:          rounding.Round2(in.CatalogCost),
		TeamAndCatalog:   rounding.Round2(base),
		Governance:       rounding.Round2(governance),
		GovernanceMethod: method,
		Risk:             rounding.Round2(risk),
		Subcontract:      rounding.Round2(subcontract),
		Total:            rounding.Round2(base + governance + risk + subcontract),
	}
}

// Governance prices governance with the configured mode and reports the
// mode actually used. Modes without the data they need fall back to a
// percentage of the base.
func Governance(in Input) (float64, string) {
	g := in.Governance
	cost, method := 0.0, ""

	switch g.Mode {
	case model.GovernanceManual:
		if g.ManualCost != nil {
			cost, method = *g.ManualCost, model.GovernanceManual
		}
	case model.GovernanceFTE:
		if len(g.FTEPeriods) > 0 {
			cost, method = in.fteGovernance(), model.GovernanceFTE
		}
	case model.GovernanceTeamMix:
		if avg, ok := in.averageRate(g.ProfileMix); ok {
			cost, method = in.teamMixGovernance(avg), model.GovernanceTeamMix
		}
	}
	if method == "" {
		cost, method = (in.TeamCost+in.CatalogCost)*in.GovernancePct, model.GovernancePercentage
	}

	if g.ApplyReuse && in.ReuseFactor > 0 {
		cost *= 1 - in.ReuseFactor
	}
	return cost, method
}

// fteGovernance prices dedicated governance FTE per period, each period at
// its mix rate inflated to the year it starts in.
func (in Input) fteGovernance() float64 {
	var total float64
	for _, p := range in.Governance.FTEPeriods {
		start, end := p.MonthStart, p.MonthEnd
		if start < 1 {
			start = 1
		}
		if end == 0 {
			end = in.Params.DurationMonths
		}
		months := end - start + 1
		if months <= 0 {
			continue
		}
		rate, _ := in.averageRate(p.Mix)
		total += p.FTE * rate * inflation(start, in.Params.InflationPct) * float64(in.Params.DaysPerFTE) * float64(months) / 12
	}
	return total
}

// teamMixGovernance staffs governance as a share of the team, priced at the
// governance mix rate and inflated contract year by contract year.
func (in Input) teamMixGovernance(avgRate float64) float64 {
	fte := in.TeamFTE * in.GovernancePct
	duration := in.Params.DurationMonths
	var total float64
	for start := 1; start <= duration; start += 12 {
		end := min(start+11, duration)
		fraction := float64(end-start+1) / 12
		total += fte * float64(in.Params.DaysPerFTE) * fraction * avgRate * inflation(start, in.Params.InflationPct)
	}
	return total
}

// averageRate is the vendor rate of mix normalized by its shares. It
// reports false when the mix carries no share at all.
func (in Input) averageRate(mix model.Mix) (float64, bool) {
	var weighted, total float64
	for _, e := range mix {
		pct := e.Pct / 100
		weighted += in.Rates.Of(e.VendorProfile) * pct
		total += pct
	}
	if total <= 0 {
		return 0, false
	}
	return weighted / total, true
}

func inflation(month int, pct float64) float64 {
	return rounding.RoundTo(mapping.InflationFactor(month, pct), 8)
}
