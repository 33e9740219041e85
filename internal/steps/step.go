package steps

import (
	"context"

	json "github.com/goccy/go-json"

	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/model"
)

// Env is what every step reads besides the situation: the normalized plan,
// the resolved vendor rates and the engine defaults. Steps never modify it.
type Env struct {
	Plan     *model.BusinessPlan
	Rates    mapping.Rates
	Defaults model.Defaults
}

// StepHandler defines the contract for all calculation steps. Validate
// checks preconditions without touching the situation; Apply fills in its
// section. Either may return CRITICAL messages, which stop the run.
//
// Apply assigns fresh values to the situation and never mutates sections
// that are already there, so earlier snapshots stay valid.
type StepHandler interface {
	Validate(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage
	Apply(ctx context.Context, env *Env, state *model.Situation, step *model.Step) []model.CalculationMessage
}

func critical(code, message string) model.CalculationMessage {
	return model.CalculationMessage{Level: model.LevelCritical, Code: code, Message: message}
}

func warning(code, message string) model.CalculationMessage {
	return model.CalculationMessage{Level: model.LevelWarning, Code: code, Message: message}
}

func failed(err error) []model.CalculationMessage {
	return []model.CalculationMessage{critical(model.CodeCalculationFailed, err.Error())}
}

// decodeProperties reads optional step properties into v. Absent or null
// properties leave v untouched.
func decodeProperties(step *model.Step, v any) []model.CalculationMessage {
	if len(step.StepProperties) == 0 || string(step.StepProperties) == "null" {
		return nil
	}
	if err := json.Unmarshal(step.StepProperties, v); err != nil {
		return []model.CalculationMessage{critical(model.CodeInvalidStepProperties, "Invalid step properties: "+err.Error())}
	}
	return nil
}
