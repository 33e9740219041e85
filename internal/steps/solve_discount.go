package steps

import (
	"context"
	"fmt"

	"tender-cost-engine/internal/margin"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rounding"
)

// marginTolerance is how far, in percentage points, the margin at the
// solved discount may fall short of the target before it is reported.
const marginTolerance = 0.1

type solveDiscountProps struct {
	TargetMarginPct *float64 `json:"target_margin_pct"`
}

type SolveDiscountHandler struct{}

func (h *SolveDiscountHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	var props solveDiscountProps
	if msgs := decodeProperties(step, &props); msgs != nil {
		return msgs
	}
	if _, ok := targetMargin(env, props); !ok {
		return []model.CalculationMessage{critical(model.CodeInvalidStepProperties,
			"A target margin is required, in the step properties or the offer")}
	}
	if state.TotalCost == nil {
		return []model.CalculationMessage{critical(model.CodeTotalCostMissing, "Total cost must be calculated before solving for a discount")}
	}
	return nil
}

func (h *SolveDiscountHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	var props solveDiscountProps
	decodeProperties(step, &props)
	target, _ := targetMargin(env, props)

	offer := margin.FromPlan(env.Plan.Offer)
	cost := state.TotalCost.Total
	discount, solvable := margin.SolveDiscount(offer, cost, target)
	m := margin.Calculate(offer, cost, discount)
	state.Discount = &model.DiscountSolution{
		TargetMarginPct: target,
		DiscountPct:     rounding.Round2(discount),
		Margin:          m,
	}

	if !solvable || m.Revenue <= 0 || m.MarginPct < target-marginTolerance {
		return []model.CalculationMessage{warning(model.CodeInfeasibleTargetMargin,
			fmt.Sprintf("A margin of %.2f%% cannot be reached; best discount %.2f%% gives %.2f%%", target, rounding.Round2(discount), m.MarginPct))}
	}
	return nil
}

func targetMargin(env *Env, props solveDiscountProps) (float64, bool) {
	if props.TargetMarginPct != nil {
		return *props.TargetMarginPct, true
	}
	if env.Plan.Offer.TargetMarginPct != nil {
		return *env.Plan.Offer.TargetMarginPct, true
	}
	return 0, false
}
