package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	matchService    *usecase.MatchService
	jobOrchestrator *usecase.JobOrchestratorService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:    matchService,
		jobOrchestrator: jobOrchestrator,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// fail writes the error envelope and annotates the handler span from ctx.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	status := writeError(w, err)
	failSpan(trace.SpanFromContext(ctx), err, status)
}
