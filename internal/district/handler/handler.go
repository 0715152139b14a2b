// Package handler exposes district reference data over HTTP. Districts are
// read-only in this service, so the handler reads the stores directly; there
// is no service layer in between.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"clearform/internal/district/models"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
	"clearform/pkg/platform/httputil"
	"clearform/pkg/platform/sentinel"
	"clearform/pkg/requestcontext"
)

// DistrictReader is the lookup surface the handler needs.
type DistrictReader interface {
	FindByCode(ctx context.Context, code string) (*models.District, error)
}

// ReferenceReader reads the supplementary data shown alongside a district.
type ReferenceReader interface {
	ExemptionsForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.ExemptionSchedule, error)
	LocalRulesForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.LocalRule, error)
}

// Handler handles district reference endpoints.
type Handler struct {
	logger    *slog.Logger
	districts DistrictReader
	reference ReferenceReader
}

// New creates a district Handler.
func New(districts DistrictReader, reference ReferenceReader, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		districts: districts,
		reference: reference,
	}
}

// Register registers the district routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/districts/{code}", h.handleGetDistrict)
	r.Get("/districts/{code}/exemptions", h.handleGetExemptions)
	r.Get("/districts/{code}/local-rules", h.handleGetLocalRules)
}

type districtResponse struct {
	ID                  id.DistrictID `json:"id"`
	Code                string        `json:"code"`
	Name                string        `json:"name"`
	State               string        `json:"state"`
	CourtName           string        `json:"court_name"`
	ProSeEFilingAllowed bool          `json:"pro_se_efiling_allowed"`
	FilingFeeChapter7   string        `json:"filing_fee_chapter_7"`
}

func toDistrictResponse(d *models.District) districtResponse {
	return districtResponse{
		ID:                  d.ID,
		Code:                d.Code,
		Name:                d.Name,
		State:               d.State,
		CourtName:           d.CourtName,
		ProSeEFilingAllowed: d.ProSeEFilingAllowed,
		FilingFeeChapter7:   money.Format(d.FilingFeeChapter7),
	}
}

func (h *Handler) handleGetDistrict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	district, ok := h.lookup(w, r)
	if !ok {
		return
	}

	exemptions, err := h.reference.ExemptionsForDistrict(ctx, district.ID)
	if err != nil {
		h.writeLookupError(ctx, w, "list exemptions", err)
		return
	}
	rules, err := h.reference.LocalRulesForDistrict(ctx, district.ID)
	if err != nil {
		h.writeLookupError(ctx, w, "list local rules", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, struct {
		districtResponse
		Exemptions []models.ExemptionSchedule `json:"exemptions"`
		LocalRules []models.LocalRule         `json:"local_rules"`
	}{
		districtResponse: toDistrictResponse(district),
		Exemptions:       exemptions,
		LocalRules:       rules,
	})
}

func (h *Handler) handleGetExemptions(w http.ResponseWriter, r *http.Request) {
	district, ok := h.lookup(w, r)
	if !ok {
		return
	}
	exemptions, err := h.reference.ExemptionsForDistrict(r.Context(), district.ID)
	if err != nil {
		h.writeLookupError(r.Context(), w, "list exemptions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"district_code": district.Code,
		"exemptions":    exemptions,
	})
}

func (h *Handler) handleGetLocalRules(w http.ResponseWriter, r *http.Request) {
	district, ok := h.lookup(w, r)
	if !ok {
		return
	}
	rules, err := h.reference.LocalRulesForDistrict(r.Context(), district.ID)
	if err != nil {
		h.writeLookupError(r.Context(), w, "list local rules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"district_code": district.Code,
		"local_rules":   rules,
	})
}

// lookup resolves the {code} path parameter to a district and writes the
// error response itself on failure.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*models.District, bool) {
	ctx := r.Context()
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "district code is required"))
		return nil, false
	}

	district, err := h.districts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "district not found"))
			return nil, false
		}
		h.writeLookupError(ctx, w, "find district", err)
		return nil, false
	}
	return district, true
}

func (h *Handler) writeLookupError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, "district lookup failed",
		"op", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "district lookup failed"))
}
