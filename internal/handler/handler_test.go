package handler

import (
	"testing"

	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"tender-cost-engine/internal/engine"
	"tender-cost-engine/internal/model"
)

const planBody = `{
	"tenant_id": "acme",
	"business_plan": {
		"duration_months": 12,
		"profile_rates": {"dev": 300},
		"team_composition": [{"profile_id": "dev", "label": "Developer", "fte": 2}],
		"offer": {"base_amount": 200000}
	},
	"calculation_instructions": {
		"steps": [{"step_id": "s1", "step_name": "calculate_team_cost"}]
	}
}`

func newHandler() *Handler {
	e := engine.New(model.Defaults{
		DaysPerFTE:             220,
		DefaultDailyRate:       250,
		GovernancePct:          0.04,
		RiskContingencyPct:     0.03,
		CatalogTargetMarginPct: 20,
	}, nil, engine.Options{})
	return New(e, logr.Discard())
}

func do(t *testing.T, method, path, body string) *fasthttp.Response {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	req.SetBodyString(body)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	newHandler().Serve(&ctx)

	resp := &fasthttp.Response{}
	ctx.Response.CopyTo(resp)
	return resp
}

func TestCalculate(t *testing.T) {
	resp := do(t, fasthttp.MethodPost, "/calculate", planBody)

	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, "application/json", string(resp.Header.ContentType()))

	var out model.CalculationResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Equal(t, model.OutcomeSuccess, out.CalculationMetadata.CalculationOutcome)
	assert.Equal(t, "acme", out.CalculationMetadata.TenantID)
	require.Len(t, out.CalculationResult.Steps, 1)
	assert.Equal(t, "s1", out.CalculationResult.Steps[0].Step.StepID)
	require.NotNil(t, out.CalculationResult.Situation.TeamCost)
	assert.Equal(t, 132_000.0, out.CalculationResult.Situation.TeamCost.TotalCost)
}

func TestCalculateFailureIsStillOK(t *testing.T) {
	body := `{"tenant_id": "acme", "business_plan": {"duration_months": 0}}`
	resp := do(t, fasthttp.MethodPost, "/calculate", body)

	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	var out model.CalculationResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Equal(t, model.OutcomeFailure, out.CalculationMetadata.CalculationOutcome)
	assert.Equal(t, model.CodeInvalidDuration, out.CalculationResult.Messages[0].Code)
}

func TestBatch(t *testing.T) {
	resp := do(t, fasthttp.MethodPost, "/calculate/batch", "["+planBody+","+planBody+"]")

	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	var out []model.CalculationResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].CalculationMetadata.CalculationID, out[1].CalculationMetadata.CalculationID)
}

func TestHealth(t *testing.T) {
	resp := do(t, fasthttp.MethodGet, "/healthz", "")
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"status": "ok"}`, string(resp.Body()))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"get calculate", fasthttp.MethodGet, "/calculate", "", fasthttp.StatusMethodNotAllowed},
		{"malformed body", fasthttp.MethodPost, "/calculate", `{"business_plan": [}`, fasthttp.StatusBadRequest},
		{"wrong field type", fasthttp.MethodPost, "/calculate", `{"business_plan": {"duration_months": "twelve"}}`, fasthttp.StatusBadRequest},
		{"empty batch", fasthttp.MethodPost, "/calculate/batch", `[]`, fasthttp.StatusBadRequest},
		{"batch of one object", fasthttp.MethodPost, "/calculate/batch", planBody, fasthttp.StatusBadRequest},
		{"post health", fasthttp.MethodPost, "/healthz", "", fasthttp.StatusMethodNotAllowed},
		{"unknown path", fasthttp.MethodGet, "/metrics", "", fasthttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode() != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.StatusCode(), resp.Body())
			}
			var out model.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body(), &out))
			assert.Equal(t, tt.status, out.Status)
			assert.NotEmpty(t, out.Message)
		})
	}
}
