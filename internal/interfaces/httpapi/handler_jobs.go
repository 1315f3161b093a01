package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
)

const maxJobRequestBytes = 64 << 10

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type internalJobSyncRequest struct {
	LeagueSlug string `json:"league_slug" validate:"omitempty,max=64"`
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=200"`
}

type jobRunner func(ctx context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error)

func (h *Handler) RunSyncFullJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunSyncFullJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		h.fail(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	h.runJob(ctx, w, r, "sync-full", h.jobOrchestrator.RunFullSync)
}

func (h *Handler) RunSyncLiveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunSyncLiveJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		h.fail(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	h.runJob(ctx, w, r, "sync-live", h.jobOrchestrator.RunLiveSync)
}

// runJob answers 200 with the per-league report even when some leagues failed, so external
// schedulers only retry on transport errors or a fully failed run.
func (h *Handler) runJob(ctx context.Context, w http.ResponseWriter, r *http.Request, jobName string, run jobRunner) {
	req, err := decodeInternalJobSyncRequest(r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.fail(ctx, w, err)
		return
	}

	result, err := run(ctx, usecase.JobSyncInput{
		LeagueSlug: req.LeagueSlug,
		DispatchID: req.DispatchID,
		Trigger:    usecase.TriggerHTTP,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run internal job failed",
			"job_name", jobName,
			"league", req.LeagueSlug,
			"failed_leagues", result.FailedCount,
			"error", err,
		)
		if result.LeagueCount == 0 || result.FailedCount == result.LeagueCount {
			h.fail(ctx, w, err)
			return
		}
	}

	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) ListJobDispatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListJobDispatches")
	defer span.End()

	if h.jobOrchestrator == nil {
		h.fail(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.fail(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	items, err := h.jobOrchestrator.ListDispatches(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list job dispatches failed", "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items)
}

func decodeInternalJobSyncRequest(r *http.Request) (internalJobSyncRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJobRequestBytes))
	if err != nil {
		return internalJobSyncRequest{}, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return internalJobSyncRequest{}, nil
	}

	var req internalJobSyncRequest
	if err := strictJSON.Unmarshal(raw, &req); err != nil {
		return internalJobSyncRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	req.LeagueSlug = strings.TrimSpace(req.LeagueSlug)
	req.DispatchID = strings.TrimSpace(req.DispatchID)
	return req, nil
}
