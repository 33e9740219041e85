package steps

import (
	"context"

	"tender-cost-engine/internal/margin"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/scenario"
	"tender-cost-engine/internal/teamcost"
)

type ScenariosHandler struct{}

func (h *ScenariosHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	if state.TotalCost == nil {
		return []model.CalculationMessage{critical(model.CodeTotalCostMissing, "Total cost must be calculated before generating scenarios")}
	}
	return nil
}

func (h *ScenariosHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	team := teamcost.FromPlan(env.Plan, env.Rates)
	out, err := scenario.Generate(ctx, scenario.Input{
		Team:             &team,
		Overhead:         overheadInput(env, state),
		CatalogCost:      catalogTotal(state),
		CurrentTotalCost: state.TotalCost.Total,
		ReuseFactor:      env.Plan.ReuseFactor,
		VolumeFactor:     env.Plan.VolumeAdjustments.Global,
		Offer:            margin.FromPlan(env.Plan.Offer),
	})
	if err != nil {
		return failed(err)
	}
	state.Scenarios = out
	return nil
}
