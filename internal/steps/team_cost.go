package steps

import (
	"context"
	"fmt"
	"sort"

	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/teamcost"
)

type TeamCostHandler struct{}

func (h *TeamCostHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	if env.Plan.DurationMonths <= 0 {
		return []model.CalculationMessage{critical(model.CodeInvalidDuration,
			fmt.Sprintf("Contract duration must be positive, got %d months", env.Plan.DurationMonths))}
	}
	for _, m := range env.Plan.TeamComposition {
		if m.FTE < 0 {
			return []model.CalculationMessage{critical(model.CodeInvalidFTE,
				fmt.Sprintf("Team member %s has negative FTE %g", m.Label, m.FTE))}
		}
	}
	return nil
}

func (h *TeamCostHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	res, err := teamcost.Calculate(ctx, teamcost.FromPlan(env.Plan, env.Rates))
	if err != nil {
		return failed(err)
	}
	state.TeamCost = res

	var msgs []model.CalculationMessage
	for _, profile := range unmappedProfiles(env.Plan) {
		msgs = append(msgs, warning(model.CodeMissingProfileMapping,
			fmt.Sprintf("Profile %s has no vendor mapping; the default daily rate applies", profile)))
	}
	if len(env.Plan.WorkPackages) > 0 {
		for _, m := range env.Plan.TeamComposition {
			if m.TowAllocation.Total() <= 0 {
				msgs = append(msgs, warning(model.CodeUnallocatedMember,
					fmt.Sprintf("Team member %s is not allocated to any work package", m.Label)))
			}
		}
	}
	return msgs
}

// unmappedProfiles lists, once each and sorted, the team profiles without
// a mapping. Plans with no mappings at all price every profile at its own
// rate and are not reported.
func unmappedProfiles(p *model.BusinessPlan) []string {
	if len(p.ProfileMappings) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range p.TeamComposition {
		if seen[m.ProfileID] {
			continue
		}
		seen[m.ProfileID] = true
		if mp, ok := p.ProfileMappings[m.ProfileID]; !ok || mp.Empty() {
			out = append(out, m.ProfileID)
		}
	}
	sort.Strings(out)
	return out
}
