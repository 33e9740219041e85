package steps

// Step names.
const (
	CalculateTeamCost      = "calculate_team_cost"
	CalculateCatalogCost   = "calculate_catalog_cost"
	CalculateTotalCost     = "calculate_total_cost"
	CalculateMargin        = "calculate_margin"
	SolveDiscountForMargin = "solve_discount_for_margin"
	GenerateScenarios      = "generate_scenarios"
)

var registry = map[string]StepHandler{
	CalculateTeamCost:      &TeamCostHandler{},
	CalculateCatalogCost:   &CatalogCostHandler{},
	CalculateTotalCost:     &TotalCostHandler{},
	CalculateMargin:        &MarginHandler{},
	SolveDiscountForMargin: &SolveDiscountHandler{},
	GenerateScenarios:      &ScenariosHandler{},
}

func Get(name string) (StepHandler, bool) {
	h, ok := registry[name]
	return h, ok
}

// DefaultPipeline lists the steps run when a request names none. The
// discount solver runs only when the offer carries a target margin.
func DefaultPipeline(hasTargetMargin bool) []string {
	names := []string{CalculateTeamCost, CalculateCatalogCost, CalculateTotalCost, CalculateMargin}
	if hasTargetMargin {
		names = append(names, SolveDiscountForMargin)
	}
	return append(names, GenerateScenarios)
}
