package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"clearform/internal/eligibility/service"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
)

type stubService struct {
	calculate func(ctx context.Context, sessionID id.SessionID) (*service.CalculateResponse, error)
	breakdown func(ctx context.Context, sessionID id.SessionID) (*service.BreakdownResponse, error)
}

func (s *stubService) Calculate(ctx context.Context, sessionID id.SessionID) (*service.CalculateResponse, error) {
	return s.calculate(ctx, sessionID)
}

func (s *stubService) Breakdown(ctx context.Context, sessionID id.SessionID) (*service.BreakdownResponse, error) {
	return s.breakdown(ctx, sessionID)
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestCalculateEndpoint(t *testing.T) {
	sessionID := id.NewSessionID()
	svc := &stubService{
		calculate: func(_ context.Context, got id.SessionID) (*service.CalculateResponse, error) {
			require.Equal(t, sessionID, got)
			return &service.CalculateResponse{
				PassesMeansTest: true,
				CMI:             "2000.00",
				Message:         "informational text",
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/eligibility/sessions/"+sessionID.String()+"/calculate", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["passes_means_test"])
	require.Equal(t, "2000.00", body["cmi"])
}

func TestCalculateMissingDataMapsTo422(t *testing.T) {
	svc := &stubService{
		calculate: func(context.Context, id.SessionID) (*service.CalculateResponse, error) {
			return nil, dErrors.New(dErrors.CodeMissingReferenceData,
				"income information must be provided before calculating the means test")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/eligibility/sessions/"+id.NewSessionID().String()+"/calculate", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "missing_reference_data", body["error"])
	require.Contains(t, body["error_description"], "income information")
}

func TestCalculateRejectsBadSessionID(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/eligibility/sessions/not-a-uuid/calculate", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakdownEndpoint(t *testing.T) {
	svc := &stubService{
		breakdown: func(context.Context, id.SessionID) (*service.BreakdownResponse, error) {
			var resp service.BreakdownResponse
			resp.Results.StatuteCitation = "11 U.S.C. § 707(b)"
			return &resp, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/eligibility/sessions/"+id.NewSessionID().String()+"/breakdown", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "707(b)")
}
