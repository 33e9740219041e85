// Package handler serves the engine over HTTP.
package handler

import (
	"context"

	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"tender-cost-engine/internal/engine"
	"tender-cost-engine/internal/model"
)

const (
	pathCalculate = "/calculate"
	pathBatch     = "/calculate/batch"
	pathHealth    = "/healthz"
)

type Handler struct {
	engine *engine.Engine
	log    logr.Logger
}

func New(e *engine.Engine, log logr.Logger) *Handler {
	return &Handler{engine: e, log: log.WithName("handler")}
}

// Serve routes a request to its endpoint.
func (h *Handler) Serve(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case pathCalculate:
		h.HandleCalculation(ctx)
	case pathBatch:
		h.HandleBatch(ctx)
	case pathHealth:
		h.HandleHealth(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) HandleCalculation(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.CalculationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp := h.engine.Process(h.context(), &req)
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) HandleBatch(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var reqs []model.CalculationRequest
	if err := json.Unmarshal(ctx.PostBody(), &reqs); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(reqs) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "At least one request is required")
		return
	}

	resps, err := h.engine.ProcessBatch(h.context(), reqs)
	if err != nil {
		h.log.Error(err, "Batch failed", "requests", len(reqs))
		writeError(ctx, fasthttp.StatusInternalServerError, "Batch failed: "+err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resps)
}

func (h *Handler) HandleHealth(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) context() context.Context {
	return logr.NewContext(context.Background(), h.log)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Encoding response: "+err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	b, _ := json.Marshal(model.ErrorResponse{Status: status, Message: message})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}
