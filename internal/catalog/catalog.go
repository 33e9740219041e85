// Package catalog prices catalog work packages. Staffing is derived top
// down: a group's share of the catalog value sets its FTE, and each item
// takes its percentage of the group.
package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"tender-cost-engine/internal/logging"
	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rounding"
)

// EqualityTolerance is how far, in percentage points, an equality cluster
// may drift from its requirement.
const EqualityTolerance = 2.0

// Sell prices are left at cost when the margin factor is at or below this.
const minMarginFactor = 0.001

// Input holds the catalog side of a plan.
type Input struct {
	WorkPackages []model.WorkPackage
	Mappings     map[string]model.ProfileMapping
	Rates        mapping.Rates
	Params       model.Parameters
	// DefaultMarginPct applies to work packages without a target margin.
	DefaultMarginPct float64
}

// FromPlan builds the input of a normalized plan.
func FromPlan(p *model.BusinessPlan, rates mapping.Rates, defaultMarginPct float64) Input {
	return Input{
		WorkPackages:     p.WorkPackages,
		Mappings:         p.ProfileMappings,
		Rates:            rates,
		Params:           p.Parameters(),
		DefaultMarginPct: defaultMarginPct,
	}
}

// Calculate prices every catalog work package. Team work packages are
// skipped.
func Calculate(ctx context.Context, in Input) (*model.CatalogCostResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("catalog")

	var catalogs []model.WorkPackage
	for _, wp := range in.WorkPackages {
		if wp.Type == model.WorkPackageCatalog {
			catalogs = append(catalogs, wp)
		}
	}

	results := make([]model.CatalogWorkPackageResult, len(catalogs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range catalogs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = in.workPackage(catalogs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keys := ResultKeys(catalogs)
	out := &model.CatalogCostResult{ByWorkPackage: make(map[string]model.CatalogWorkPackageResult, len(catalogs))}
	var total float64
	for i, wp := range catalogs {
		out.ByWorkPackage[keys[i]] = results[i]
		total += results[i].Cost
		log.V(logging.DEBUG).Info("Catalog work package priced",
			"workPackage", keys[i], "items", len(wp.CatalogItems), "cost", results[i].Cost, "revenue", results[i].Revenue)
	}
	out.TotalCost = rounding.Round2(total)
	return out, nil
}

type groupTotals struct {
	fte, cost, revenue float64
}

// ResultKeys returns the by_work_package key of each catalog work package,
// in order. A work package without an id is keyed by its position ("#2");
// a repeated id gets the same suffix, so no result overwrites another.
func ResultKeys(catalogs []model.WorkPackage) []string {
	keys := make([]string, len(catalogs))
	used := make(map[string]bool, len(catalogs))
	for i, wp := range catalogs {
		key := wp.ID
		if key == "" || used[key] {
			key = fmt.Sprintf("%s#%d", wp.ID, i+1)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func (in Input) workPackage(wp model.WorkPackage) model.CatalogWorkPackageResult {
	params := in.Params
	years := float64(params.DurationMonths) / 12
	sconto := 1 - wp.TenderDiscountPct/100
	targetMargin := in.DefaultMarginPct
	if wp.TargetMarginPct != nil {
		targetMargin = *wp.TargetMarginPct
	}

	// groups are told apart by position; their ids are optional
	groupOf := make(map[string]int)
	for gi, g := range wp.CatalogGroups {
		for _, id := range g.ItemIDs {
			groupOf[id] = gi
		}
	}

	var cost, revenue, derivedFTE float64
	itemFTE := make([]float64, len(wp.CatalogItems))
	items := make([]model.CatalogItemResult, 0, len(wp.CatalogItems))
	byGroup := make([]groupTotals, len(wp.CatalogGroups))

	for i, item := range wp.CatalogItems {
		gi, grouped := groupOf[item.ID]
		var groupTarget float64
		reuse := wp.DefaultReuseFactor
		if grouped {
			group := wp.CatalogGroups[gi]
			groupTarget = group.TargetValue
			if group.ReuseFactor != nil {
				reuse = *group.ReuseFactor
			}
		}

		var groupFTE float64
		if wp.TotalCatalogValue > 0 && groupTarget > 0 {
			groupFTE = groupTarget / wp.TotalCatalogValue * wp.TotalFTE
		}
		fte := groupFTE * (1 - reuse) * item.GroupPct / 100

		rate := mapping.MixRate(item.ProfileMix, in.Mappings, in.Rates, params.DurationMonths, params.InflationPct)
		itemCost := fte * rate * years * float64(params.DaysPerFTE)

		margin := targetMargin
		if item.TargetMarginPct != nil {
			margin = *item.TargetMarginPct
		}
		sell, degenerate := SellPrice(itemCost, margin)

		buyerTotal := groupTarget * sconto * item.GroupPct / 100
		priceBase := item.PriceBase * sconto
		var unitPrice float64
		if buyerTotal > 0 && priceBase > 0 {
			unitPrice = sell / buyerTotal * priceBase
		}
		var discount float64
		if item.PriceBase > 0 && unitPrice > 0 {
			discount = (1 - unitPrice/item.PriceBase) * 100
		}

		cost += itemCost
		revenue += sell
		derivedFTE += fte
		itemFTE[i] = fte
		if grouped {
			gt := &byGroup[gi]
			gt.fte += fte
			gt.cost += itemCost
			gt.revenue += sell
		}

		items = append(items, model.CatalogItemResult{
			ID:                 item.ID,
			Label:              item.Label,
			PriceBase:          item.PriceBase,
			GroupPct:           rounding.Round2(item.GroupPct),
			BuyerTotal:         rounding.Round2(buyerTotal),
			EffectiveMarginPct: rounding.Round2(margin),
			FTE:                rounding.RoundTo(fte, 4),
			AvgDailyRate:       rounding.Round2(rate),
			Cost:               rounding.Round2(itemCost),
			Revenue:            rounding.Round2(sell),
			Margin:             rounding.Round2(sell - itemCost),
			UnitPrice:          rounding.Round2(unitPrice),
			DiscountPct:        rounding.Round2(discount),
			DegenerateMargin:   degenerate,
		})
	}

	groups := make([]model.CatalogGroupResult, 0, len(wp.CatalogGroups))
	for gi, g := range wp.CatalogGroups {
		gt := byGroup[gi]
		groups = append(groups, model.CatalogGroupResult{
			ID:          g.ID,
			Label:       g.Label,
			TargetValue: rounding.Round2(g.TargetValue),
			FTE:         rounding.RoundTo(gt.fte, 4),
			Cost:        rounding.Round2(gt.cost),
			Revenue:     rounding.Round2(gt.revenue),
			Margin:      rounding.Round2(gt.revenue - gt.cost),
		})
	}

	margin, marginPct := revenue-cost, 0.0
	if revenue > 0 {
		marginPct = margin / revenue * 100
	}

	return model.CatalogWorkPackageResult{
		Label:               wp.Label,
		RefTotalFTE:         rounding.RoundTo(wp.TotalFTE, 4),
		TotalDerivedFTE:     rounding.RoundTo(derivedFTE, 4),
		TotalCatalogValue:   rounding.Round2(wp.TotalCatalogValue),
		Cost:                rounding.Round2(cost),
		Revenue:             rounding.Round2(revenue),
		Margin:              rounding.Round2(margin),
		MarginPct:           rounding.Round2(marginPct),
		Items:               items,
		Groups:              groups,
		ClusterDistribution: ClusterDistribution(wp.CatalogItems, wp.CatalogClusters, itemFTE),
	}
}

// SellPrice marks cost up to reach marginPct of the sell price. A margin at
// or near 100% leaves the price at cost and reports it as degenerate.
func SellPrice(cost, marginPct float64) (float64, bool) {
	factor := 1 - marginPct/100
	if factor <= minMarginFactor {
		return cost, true
	}
	return cost / factor, false
}

// ClusterDistribution checks how the catalog effort spreads over buyer
// profile clusters. Each item weighs by its share of the total item FTE;
// itemFTE is parallel to items. It has no effect on cost.
func ClusterDistribution(items []model.CatalogItem, clusters []model.CatalogCluster, itemFTE []float64) map[string]model.ClusterCheck {
	if len(clusters) == 0 {
		return map[string]model.ClusterCheck{}
	}

	clusterOf := make(map[string]string)
	for _, c := range clusters {
		for _, p := range c.Profiles {
			clusterOf[p] = c.ID
		}
	}

	var totalFTE float64
	for _, f := range itemFTE {
		totalFTE += f
	}

	actual := make(map[string]float64, len(clusters))
	for i, item := range items {
		if totalFTE <= 0 || i >= len(itemFTE) {
			break
		}
		weight := itemFTE[i] / totalFTE
		for _, s := range item.ProfileMix {
			if id, ok := clusterOf[s.Profile]; ok {
				actual[id] += weight * s.Pct
			}
		}
	}

	out := make(map[string]model.ClusterCheck, len(clusters))
	for _, c := range clusters {
		a := actual[c.ID]
		delta := a - c.RequiredPct
		label := c.Label
		if label == "" {
			label = c.ID
		}
		out[c.ID] = model.ClusterCheck{
			Label:          label,
			Profiles:       c.Profiles,
			RequiredPct:    c.RequiredPct,
			ConstraintType: c.ConstraintType,
			ActualPct:      rounding.Round2(a),
			Delta:          rounding.Round2(delta),
			OK:             constraintMet(c.ConstraintType, a, c.RequiredPct),
		}
	}
	return out
}

func constraintMet(kind string, actual, required float64) bool {
	switch kind {
	case model.ConstraintMinimum:
		return actual >= required
	case model.ConstraintMaximum:
		return actual <= required
	default:
		return math.Abs(actual-required) <= EqualityTolerance
	}
}
