package steps

import (
	"context"
	"fmt"
	"sort"

	"tender-cost-engine/internal/catalog"
	"tender-cost-engine/internal/model"
)

type CatalogCostHandler struct{}

func (h *CatalogCostHandler) Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	if env.Plan.DurationMonths <= 0 {
		return []model.CalculationMessage{critical(model.CodeInvalidDuration,
			fmt.Sprintf("Contract duration must be positive, got %d months", env.Plan.DurationMonths))}
	}
	return nil
}

func (h *CatalogCostHandler) Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage {
	res, err := catalog.Calculate(ctx, catalog.FromPlan(env.Plan, env.Rates, env.Defaults.CatalogTargetMarginPct))
	if err != nil {
		return failed(err)
	}
	state.CatalogCost = res

	var catalogs []model.WorkPackage
	for _, wp := range env.Plan.WorkPackages {
		if wp.Type == model.WorkPackageCatalog {
			catalogs = append(catalogs, wp)
		}
	}
	keys := catalog.ResultKeys(catalogs)

	var msgs []model.CalculationMessage
	for i, wp := range catalogs {
		if keys[i] != wp.ID {
			msgs = append(msgs, warning(model.CodeWorkPackageIDConflict,
				fmt.Sprintf("Catalog work package at position %d has a missing or repeated id %q; reported as %s", i+1, wp.ID, keys[i])))
		}
		if wp.TotalCatalogValue <= 0 {
			msgs = append(msgs, warning(model.CodeCatalogValueNotSet,
				fmt.Sprintf("Catalog work package %s has no total catalog value; its items derive no FTE", wp.ID)))
		}

		grouped := make(map[string]bool)
		for _, g := range wp.CatalogGroups {
			for _, id := range g.ItemIDs {
				grouped[id] = true
			}
		}
		for _, item := range wp.CatalogItems {
			if !grouped[item.ID] {
				msgs = append(msgs, warning(model.CodeItemWithoutGroup,
					fmt.Sprintf("Catalog item %s in %s belongs to no group", item.ID, wp.ID)))
			}
		}

		result := res.ByWorkPackage[keys[i]]
		for _, item := range result.Items {
			if item.DegenerateMargin {
				msgs = append(msgs, warning(model.CodeDegenerateMargin,
					fmt.Sprintf("Catalog item %s in %s has a target margin of %.2f%%; it is sold at cost", item.ID, wp.ID, item.EffectiveMarginPct)))
			}
		}

		ids := make([]string, 0, len(result.ClusterDistribution))
		for id := range result.ClusterDistribution {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c := result.ClusterDistribution[id]
			if !c.OK {
				msgs = append(msgs, warning(model.CodeClusterConstraintFailed,
					fmt.Sprintf("Cluster %s in %s holds %.2f%% of the effort, required %s %.2f%%", id, wp.ID, c.ActualPct, c.ConstraintType, c.RequiredPct)))
			}
		}
	}
	return msgs
}
