// Package margin computes the margin of an offer and solves for the
// discount that reaches a target margin.
package margin

import (
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rounding"
)

// Offer is the commercial side of a bid.
type Offer struct {
	BaseAmount float64
	// IsRTI marks a temporary partnership, where only Quota of the revenue
	// is ours.
	IsRTI bool
	Quota float64
}

// FromPlan reads the offer of a plan. A missing quota counts as the whole
// revenue.
func FromPlan(o model.Offer) Offer {
	return Offer{BaseAmount: o.BaseAmount, IsRTI: o.IsRTI, Quota: o.QuotaOrOne()}
}

func (o Offer) quota() float64 {
	if o.IsRTI {
		return o.Quota
	}
	return 1.0
}

// Revenue is the offer amount after discountPct, reduced to our quota.
func (o Offer) Revenue(discountPct float64) float64 {
	return o.BaseAmount * (1 - discountPct/100) * o.quota()
}

// Calculate returns revenue, cost and margin at discountPct. The margin
// percentage is zero when there is no revenue.
func Calculate(o Offer, totalCost, discountPct float64) model.Margin {
	revenue := o.Revenue(discountPct)
	margin := revenue - totalCost
	var pct float64
	if revenue > 0 {
		pct = margin / revenue * 100
	}
	return model.Margin{
		Revenue:   rounding.Round2(revenue),
		Cost:      rounding.Round2(totalCost),
		Margin:    rounding.Round2(margin),
		MarginPct: rounding.Round2(pct),
	}
}

// SolveDiscount returns the discount, in percent and clamped to [0, 100],
// at which the offer earns targetMarginPct. It returns 0 and false when no
// discount can reach the target. The discount is not rounded; callers
// round it where it is reported.
func SolveDiscount(o Offer, totalCost, targetMarginPct float64) (float64, bool) {
	denom := o.BaseAmount * o.quota() * (1 - targetMarginPct/100)
	if denom <= 0 {
		return 0, false
	}
	discount := (1 - totalCost/denom) * 100
	return min(max(discount, 0), 100), true
}
