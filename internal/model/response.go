package model

import "tender-cost-engine/internal/jsonpatch"

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	TenantID               string `json:"tenant_id"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type CalculationResult struct {
	Messages  []CalculationMessage `json:"messages"`
	Steps     []ProcessedStep      `json:"steps"`
	Situation Situation            `json:"situation"`
}

type ProcessedStep struct {
	Step                      Step                  `json:"step"`
	CalculationMessageIndexes []int                 `json:"calculation_message_indexes,omitempty"`
	SituationPatch            []jsonpatch.Operation `json:"situation_patch,omitempty"`
}

// Situation is the evaluation state the steps fill in. Nil sections have not
// been calculated.
type Situation struct {
	TeamCost    *CostResult         `json:"team_cost"`
	CatalogCost *CatalogCostResult  `json:"catalog_cost"`
	TotalCost   *TotalCostBreakdown `json:"total_cost"`
	Margin      *Margin             `json:"margin"`
	Discount    *DiscountSolution   `json:"discount"`
	Scenarios   []Scenario          `json:"scenarios"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
