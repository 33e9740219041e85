// Package engine runs a cost evaluation: it normalizes the business plan,
// resolves vendor rates and walks the requested steps over a shared
// situation.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tender-cost-engine/internal/jsonpatch"
	"tender-cost-engine/internal/logging"
	"tender-cost-engine/internal/mapping"
	"tender-cost-engine/internal/model"
	"tender-cost-engine/internal/rateregistry"
	"tender-cost-engine/internal/steps"
)

type Options struct {
	// BatchConcurrency caps the requests of a batch evaluated at once. Zero
	// or less means no limit.
	BatchConcurrency int
}

type Engine struct {
	defaults model.Defaults
	rates    *rateregistry.Registry
	opts     Options
}

// New returns an engine filling unset plan settings from defaults. rates
// may be nil, in which case only request rates are used.
func New(defaults model.Defaults, rates *rateregistry.Registry, opts Options) *Engine {
	return &Engine{defaults: defaults, rates: rates, opts: opts}
}

func (e *Engine) Process(ctx context.Context, req *model.CalculationRequest) *model.CalculationResponse {
	start := time.Now()
	calculationID := uuid.New().String()
	log := logr.FromContextOrDiscard(ctx).WithName("engine").WithValues("calculationID", calculationID, "tenant", req.TenantID)
	ctx = logr.NewContext(ctx, log)

	defaults := e.defaults
	if rate := e.rates.DefaultRate(); rate > 0 {
		defaults.DefaultDailyRate = rate
	}
	plan := req.BusinessPlan
	plan.Normalize(defaults)

	state := &model.Situation{}
	allMessages := []model.CalculationMessage{}
	processedSteps := []model.ProcessedStep{}
	outcome := model.OutcomeSuccess

	if msgs := validatePlan(&plan); len(msgs) > 0 {
		for _, m := range msgs {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
		}
		log.Info("Business plan rejected", "code", msgs[0].Code)
		return response(calculationID, req.TenantID, start, model.OutcomeFailure, allMessages, processedSteps, state)
	}

	env := &steps.Env{
		Plan: &plan,
		Rates: mapping.Rates{
			Table:   e.rates.Fill(ctx, plan.ProfileRates, referencedProfiles(&plan)),
			Default: plan.DefaultDailyRate,
		},
		Defaults: defaults,
	}

	for _, step := range requestedSteps(req, &plan) {
		handler, ok := steps.Get(step.StepName)
		if !ok {
			msg := model.CalculationMessage{
				ID:      len(allMessages),
				Level:   model.LevelCritical,
				Code:    model.CodeUnknownStep,
				Message: fmt.Sprintf("Unknown step: %s", step.StepName),
			}
			allMessages = append(allMessages, msg)
			processedSteps = append(processedSteps, model.ProcessedStep{
				Step:                      step,
				CalculationMessageIndexes: []int{msg.ID},
			})
			outcome = model.OutcomeFailure
			break
		}

		var msgIndexes []int
		hasCritical := false
		record := func(msgs []model.CalculationMessage) {
			for _, m := range msgs {
				m.ID = len(allMessages)
				allMessages = append(allMessages, m)
				msgIndexes = append(msgIndexes, m.ID)
				if m.Level == model.LevelCritical {
					hasCritical = true
				}
			}
		}

		record(handler.Validate(ctx, env, state, &step))
		if hasCritical {
			outcome = model.OutcomeFailure
			processedSteps = append(processedSteps, model.ProcessedStep{Step: step, CalculationMessageIndexes: msgIndexes})
			break
		}

		// Sections are replaced, never mutated, so a shallow copy is a full
		// snapshot of the situation before the step.
		before := *state
		record(handler.Apply(ctx, env, state, &step))

		processed := model.ProcessedStep{Step: step, CalculationMessageIndexes: msgIndexes}
		if hasCritical {
			*state = before
			outcome = model.OutcomeFailure
			processedSteps = append(processedSteps, processed)
			break
		}
		if req.CalculationInstructions.IncludePatches {
			patch, err := jsonpatch.Between(before, *state)
			if err != nil {
				log.Error(err, "Situation patch failed", "step", step.StepName)
			}
			processed.SituationPatch = patch
		}
		processedSteps = append(processedSteps, processed)
		log.V(logging.DEBUG).Info("Step applied", "step", step.StepName, "messages", len(msgIndexes))
	}

	resp := response(calculationID, req.TenantID, start, outcome, allMessages, processedSteps, state)
	log.Info("Calculation completed",
		"outcome", outcome, "steps", len(processedSteps), "messages", len(allMessages),
		"durationMs", resp.CalculationMetadata.CalculationDurationMs)
	return resp
}

// ProcessBatch evaluates reqs concurrently. Responses are in request order.
func (e *Engine) ProcessBatch(ctx context.Context, reqs []model.CalculationRequest) ([]*model.CalculationResponse, error) {
	out := make([]*model.CalculationResponse, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if e.opts.BatchConcurrency > 0 {
		g.SetLimit(e.opts.BatchConcurrency)
	}
	for i := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.Process(gctx, &reqs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return out, nil
}

// validatePlan rejects plans no step can evaluate.
func validatePlan(p *model.BusinessPlan) []model.CalculationMessage {
	if p.DurationMonths <= 0 {
		return []model.CalculationMessage{{
			Level:   model.LevelCritical,
			Code:    model.CodeInvalidDuration,
			Message: fmt.Sprintf("Contract duration must be positive, got %d months", p.DurationMonths),
		}}
	}
	for _, m := range p.TeamComposition {
		if m.FTE < 0 {
			return []model.CalculationMessage{{
				Level:   model.LevelCritical,
				Code:    model.CodeInvalidFTE,
				Message: fmt.Sprintf("Team member %s has negative FTE %g", m.Label, m.FTE),
			}}
		}
	}
	return nil
}

func requestedSteps(req *model.CalculationRequest, p *model.BusinessPlan) []model.Step {
	if len(req.CalculationInstructions.Steps) > 0 {
		return req.CalculationInstructions.Steps
	}
	names := steps.DefaultPipeline(p.Offer.TargetMarginPct != nil)
	out := make([]model.Step, 0, len(names))
	for _, name := range names {
		out = append(out, model.Step{StepID: uuid.New().String(), StepName: name})
	}
	return out
}

// referencedProfiles lists every profile id a rate may be looked up for:
// team profiles, vendor profiles of mappings and governance mixes, and the
// buyer profiles of catalog items.
func referencedProfiles(p *model.BusinessPlan) []string {
	seen := make(map[string]bool)
	addMix := func(mix model.Mix) {
		for _, e := range mix {
			seen[e.VendorProfile] = true
		}
	}
	for _, m := range p.TeamComposition {
		seen[m.ProfileID] = true
	}
	for _, m := range p.ProfileMappings {
		addMix(m.Flat)
		for _, period := range m.Periods {
			addMix(period.Mix)
		}
		for _, y := range m.Years {
			addMix(y.Mix)
		}
	}
	for _, wp := range p.WorkPackages {
		for _, item := range wp.CatalogItems {
			for _, s := range item.ProfileMix {
				seen[s.Profile] = true
			}
		}
	}
	addMix(p.Overhead.Governance.ProfileMix)
	for _, period := range p.Overhead.Governance.FTEPeriods {
		addMix(period.Mix)
	}

	delete(seen, "")
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func response(calculationID, tenantID string, start time.Time, outcome string, msgs []model.CalculationMessage, processed []model.ProcessedStep, state *model.Situation) *model.CalculationResponse {
	elapsed := time.Since(start)
	now := time.Now().UTC()
	return &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          calculationID,
			TenantID:               tenantID,
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		CalculationResult: model.CalculationResult{
			Messages:  msgs,
			Steps:     processed,
			Situation: *state,
		},
	}
}
