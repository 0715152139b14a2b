// Package handler exposes form generation and lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clearform/internal/forms/models"
	"clearform/internal/forms/service"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/platform/httputil"
	"clearform/pkg/requestcontext"
)

// Service defines the form operations the handler fronts.
type Service interface {
	Generate(ctx context.Context, sessionID id.SessionID) (*service.GenerateResponse, error)
	Preview(ctx context.Context, sessionID id.SessionID) (*service.PreviewResponse, error)
	MarkDownloaded(ctx context.Context, formID id.FormID) (*service.StatusResponse, error)
	MarkFiled(ctx context.Context, formID id.FormID) (*service.StatusResponse, error)
	Get(ctx context.Context, formID id.FormID) (*models.GeneratedForm, error)
}

// Handler handles form endpoints.
type Handler struct {
	logger *slog.Logger
	forms  Service
}

// New creates a forms Handler.
func New(forms Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, forms: forms}
}

// Register registers the form routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/forms/sessions/{sessionID}/form-101", h.handleGenerate)
	r.Get("/forms/sessions/{sessionID}/form-101/preview", h.handlePreview)
	r.Get("/forms/{formID}", h.handleGet)
	r.Post("/forms/{formID}/downloaded", h.handleMarkDownloaded)
	r.Post("/forms/{formID}/filed", h.handleMarkFiled)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.forms.Generate(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "generate form", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.forms.Preview(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "preview form", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := h.formID(w, r)
	if !ok {
		return
	}
	form, err := h.forms.Get(ctx, formID)
	if err != nil {
		h.writeServiceError(ctx, w, "get form", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"form_id":      form.ID,
		"form_type":    form.FormType,
		"form_name":    form.FormType.DisplayName(),
		"status":       form.Status,
		"data":         form.Data,
		"generated_at": form.GeneratedAt,
	})
}

func (h *Handler) handleMarkDownloaded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := h.formID(w, r)
	if !ok {
		return
	}
	resp, err := h.forms.MarkDownloaded(ctx, formID)
	if err != nil {
		h.writeServiceError(ctx, w, "mark downloaded", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMarkFiled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := h.formID(w, r)
	if !ok {
		return
	}
	resp, err := h.forms.MarkFiled(ctx, formID)
	if err != nil {
		h.writeServiceError(ctx, w, "mark filed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid session id"))
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) formID(w http.ResponseWriter, r *http.Request) (id.FormID, bool) {
	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid form id"))
		return id.FormID{}, false
	}
	return formID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "forms operation failed",
			"op", op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
