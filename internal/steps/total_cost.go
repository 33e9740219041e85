package steps

import (
	"context"

	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/overhead"
)

type TotalCostHandler struct{}

func (h *TotalCostHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	if state.TeamCost == nil {
		return []model.CalculationMessage{critical(model.CodeTeamCostMissing, "Team cost must be calculated before the total cost")}
	}
	return nil
}

// Apply adds the overhead on top of team and catalog cost. A plan without
// a catalog step counts no catalog cost.
func (h *TotalCostHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	breakdown := overhead.Calculate(overheadInput(env, state))
	state.TotalCost = &breakdown
	return nil
}

func catalogTotal(state *model.Situation) float64 {
	if state.CatalogCost == nil {
		return 0
	}
	return state.CatalogCost.TotalCost
}

func overheadInput(env *Env, state *model.Situation) overhead.Input {
	var team float64
	if state.TeamCost != nil {
		team = state.TeamCost.TotalCost
	}
	return overhead.FromPlan(env.Plan, env.Rates, team, catalogTotal(state))
}
