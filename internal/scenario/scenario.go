// Package scenario produces the fixed what-if scenarios of a bid by moving
// the reuse and global volume factors.
package scenario

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"tender-cost-engine/internal/logging"
	"tender-cost-engine/internal/margin"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/overhead"
	"tender-cost-engine/internal/rounding"
	"tender-cost-engine/internal/teamcost"
)

// Bounds of the perturbed factors.
const (
	MinReuse  = 0.0
	MaxReuse  = 0.8
	MinVolume = 0.5
	MaxVolume = 1.5
)

// Definition is a named shift of the reuse and volume factors.
type Definition struct {
	Name        string
	ReuseDelta  float64
	VolumeDelta float64
}

// Definitions are the scenarios every evaluation returns, in order.
var Definitions = []Definition{
	{Name: "Balanced", ReuseDelta: 0, VolumeDelta: 0},
	{Name: "Conservative", ReuseDelta: -0.05, VolumeDelta: 0.05},
	{Name: "Aggressive", ReuseDelta: 0.05, VolumeDelta: -0.05},
}

// Input is the current state of the bid.
type Input struct {
	// Team is the team evaluation to re-run per scenario. Without it, or
	// without members, scenarios are extrapolated from CurrentTotalCost.
	Team *teamcost.Input
	// Overhead holds the overhead settings; its cost base and reuse factor
	// are replaced per scenario.
	Overhead         overhead.Input
	CatalogCost      float64
	CurrentTotalCost float64
	ReuseFactor      float64
	VolumeFactor     float64
	Offer            margin.Offer
}

// Generate returns one scenario per definition, in definition order. Each
// is priced at zero discount.
func Generate(ctx context.Context, in Input) ([]model.Scenario, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("scenario")
	full := in.Team != nil && len(in.Team.Members) > 0

	out := make([]model.Scenario, len(Definitions))
	g, gctx := errgroup.WithContext(ctx)
	for i, def := range Definitions {
		g.Go(func() error {
			reuse := clamp(in.ReuseFactor+def.ReuseDelta, MinReuse, MaxReuse)
			volume := clamp(in.VolumeFactor+def.VolumeDelta, MinVolume, MaxVolume)

			var cost float64
			if full {
				c, err := in.recalculate(gctx, reuse, volume)
				if err != nil {
					return fmt.Errorf("scenario %s: %w", def.Name, err)
				}
				cost = c
			} else {
				cost = in.extrapolate(reuse, volume)
			}

			m := margin.Calculate(in.Offer, cost, 0)
			out[i] = model.Scenario{
				Name:         def.Name,
				ReuseFactor:  rounding.Round2(reuse),
				VolumeFactor: rounding.Round2(volume),
				TotalCost:    rounding.Round2(cost),
				Revenue:      m.Revenue,
				Cost:         m.Cost,
				Margin:       m.Margin,
				MarginPct:    m.MarginPct,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.V(logging.DEBUG).Info("Scenarios generated", "recalculated", full, "count", len(out))
	return out, nil
}

// recalculate re-runs the team with the scenario factors, keeps the catalog
// cost and applies the overhead again.
func (in Input) recalculate(ctx context.Context, reuse, volume float64) (float64, error) {
	team := *in.Team
	team.ReuseFactor = reuse
	team.Volume.Global = volume

	res, err := teamcost.Calculate(ctx, team)
	if err != nil {
		return 0, err
	}

	oh := in.Overhead
	oh.TeamCost = res.TotalCost
	oh.CatalogCost = in.CatalogCost
	oh.ReuseFactor = reuse
	return overhead.Calculate(oh).Total, nil
}

// extrapolate scales the current cost linearly in volume and (1 - reuse).
func (in Input) extrapolate(reuse, volume float64) float64 {
	current := in.VolumeFactor
	if current <= 0 {
		current = 1.0
	}
	raw := in.CurrentTotalCost
	if denom := current * (1 - in.ReuseFactor); denom > 0 {
		raw = in.CurrentTotalCost / denom
	}
	return raw * volume * (1 - reuse)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
