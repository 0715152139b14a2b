// Package handler exposes the intake wizard steps over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	districtmodels "clearform/internal/district/models"
	"clearform/internal/intake/models"
	"clearform/internal/intake/store"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
	"clearform/pkg/platform/httputil"
	"clearform/pkg/platform/sentinel"
	"clearform/pkg/requestcontext"
)

// DistrictResolver resolves a district code from the create-session request.
type DistrictResolver interface {
	FindByCode(ctx context.Context, code string) (*districtmodels.District, error)
}

// Handler handles intake endpoints.
type Handler struct {
	logger    *slog.Logger
	sessions  store.SessionStore
	districts DistrictResolver
}

// New creates an intake Handler.
func New(sessions store.SessionStore, districts DistrictResolver, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		districts: districts,
	}
}

// Register registers the intake routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/intake/sessions", h.handleCreateSession)
	r.Get("/intake/sessions/{sessionID}", h.handleGetSession)
	r.Put("/intake/sessions/{sessionID}/debtor", h.handlePutDebtor)
	r.Put("/intake/sessions/{sessionID}/income", h.handlePutIncome)
	r.Put("/intake/sessions/{sessionID}/flags", h.handlePutFlags)
}

type createSessionRequest struct {
	DistrictCode string `json:"district_code"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "user identity is required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[createSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.DistrictCode == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "district_code is required"))
		return
	}

	district, err := h.districts.FindByCode(ctx, req.DistrictCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown district code"))
			return
		}
		h.writeInternal(ctx, w, "resolve district", err)
		return
	}

	session := &models.Session{
		ID:          id.NewSessionID(),
		UserID:      userID,
		DistrictID:  district.ID,
		Status:      models.StatusStarted,
		CurrentStep: 1,
		CreatedAt:   requestcontext.Now(ctx).UTC(),
	}
	if err := h.sessions.Save(ctx, session); err != nil {
		h.writeInternal(ctx, w, "save session", err)
		return
	}

	h.logger.InfoContext(ctx, "intake session created",
		"request_id", requestID,
		"session_id", session.ID,
		"district_id", district.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	session, err := h.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
			return
		}
		h.writeInternal(ctx, w, "find session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

type putDebtorRequest struct {
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	SSN           string `json:"ssn"`
	DateOfBirth   string `json:"date_of_birth"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
}

func (h *Handler) handlePutDebtor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[putDebtorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	info := &models.DebtorInfo{
		SessionID:     sessionID,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		SSN:           req.SSN,
		Phone:         req.Phone,
		Email:         req.Email,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "date_of_birth must be YYYY-MM-DD"))
			return
		}
		info.DateOfBirth = dob
	}
	if err := info.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.sessions.SaveDebtor(ctx, info); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
			return
		}
		h.writeInternal(ctx, w, "save debtor info", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type putIncomeRequest struct {
	MaritalStatus string   `json:"marital_status"`
	Dependents    int      `json:"number_of_dependents"`
	MonthlyIncome []string `json:"monthly_income"`
}

func (h *Handler) handlePutIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[putIncomeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	status, err := models.ParseMaritalStatus(req.MaritalStatus)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	monthly := make([]decimal.Decimal, len(req.MonthlyIncome))
	for i, raw := range req.MonthlyIncome {
		amount, err := money.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid monthly income amount"))
			return
		}
		monthly[i] = amount
	}

	info := &models.IncomeInfo{
		SessionID:     sessionID,
		MaritalStatus: status,
		Dependents:    req.Dependents,
		MonthlyIncome: monthly,
		CreatedAt:     requestcontext.Now(ctx).UTC(),
	}
	if err := info.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.sessions.SaveIncome(ctx, info); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
			return
		}
		h.writeInternal(ctx, w, "save income info", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "saved",
		"family_size": info.FamilySize(),
	})
}

type putFlagsRequest struct {
	HasAssets *bool `json:"has_assets"`
	HasDebts  *bool `json:"has_debts"`
}

// handlePutFlags records whether the filer reported any assets or debts.
// The statistical section of the petition needs only the booleans.
func (h *Handler) handlePutFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[putFlagsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.HasAssets == nil && req.HasDebts == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "has_assets or has_debts is required"))
		return
	}

	if req.HasAssets != nil {
		if err := h.sessions.SetHasAssets(ctx, sessionID, *req.HasAssets); err != nil {
			h.writeFlagError(ctx, w, err)
			return
		}
	}
	if req.HasDebts != nil {
		if err := h.sessions.SetHasDebts(ctx, sessionID, *req.HasDebts); err != nil {
			h.writeFlagError(ctx, w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (h *Handler) writeFlagError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
		return
	}
	h.writeInternal(ctx, w, "set session flag", err)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid session id"))
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) writeInternal(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, "intake operation failed",
		"op", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "intake operation failed"))
}
