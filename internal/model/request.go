package model

import json "github.com/goccy/go-json"

type CalculationRequest struct {
	TenantID                string                  `json:"tenant_id"`
	BusinessPlan            BusinessPlan            `json:"business_plan"`
	CalculationInstructions CalculationInstructions `json:"calculation_instructions"`
}

type CalculationInstructions struct {
	Steps          []Step `json:"steps"`
	IncludePatches bool   `json:"include_patches,omitempty"`
}

type Step struct {
	StepID         string          `json:"step_id"`
	StepName       string          `json:"step_name"`
	StepProperties json.RawMessage `json:"step_properties,omitempty"`
}
