package steps

import (
	"context"
	"fmt"

	"tender-cost-engine/internal/margin"
	"tender-cost-engine/internal/model"
)

type marginProps struct {
	DiscountPct *float64 `json:"discount_pct"`
}

type MarginHandler struct{}

func (h *MarginHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	var props marginProps
	if msgs := decodeProperties(step, &props); msgs != nil {
		return msgs
	}
	if props.DiscountPct != nil && (*props.DiscountPct < 0 || *props.DiscountPct > 100) {
		return []model.CalculationMessage{critical(model.CodeInvalidStepProperties,
			fmt.Sprintf("Discount must be between 0 and 100, got %g", *props.DiscountPct))}
	}
	if state.TotalCost == nil {
		return []model.CalculationMessage{critical(model.CodeTotalCostMissing, "Total cost must be calculated before the margin")}
	}
	return nil
}

// Apply prices the offer at the step's discount, or at the offer's own
// discount when the step gives none.
func (h *MarginHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	var props marginProps
	decodeProperties(step, &props)
	discount := env.Plan.Offer.DiscountPct
	if props.DiscountPct != nil {
		discount = *props.DiscountPct
	}

	m := margin.Calculate(margin.FromPlan(env.Plan.Offer), state.TotalCost.Total, discount)
	state.Margin = &m
	if m.Revenue <= 0 {
		return []model.CalculationMessage{warning(model.CodeZeroRevenue, "The offer yields no revenue; margin percentage reported as 0")}
	}
	return nil
}
