// Package handler exposes means test operations over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clearform/internal/eligibility/service"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/platform/httputil"
	"clearform/pkg/requestcontext"
)

// Service defines the eligibility operations the handler fronts.
type Service interface {
	Calculate(ctx context.Context, sessionID id.SessionID) (*service.CalculateResponse, error)
	Breakdown(ctx context.Context, sessionID id.SessionID) (*service.BreakdownResponse, error)
}

// Handler handles eligibility endpoints.
type Handler struct {
	logger      *slog.Logger
	eligibility Service
}

// New creates an eligibility Handler.
func New(eligibility Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, eligibility: eligibility}
}

// Register registers the eligibility routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/sessions/{sessionID}/calculate", h.handleCalculate)
	r.Get("/eligibility/sessions/{sessionID}/breakdown", h.handleBreakdown)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid session id"))
		return
	}

	resp, err := h.eligibility.Calculate(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "calculate means test", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid session id"))
		return
	}

	resp, err := h.eligibility.Breakdown(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "load breakdown", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "eligibility operation failed",
			"op", op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
