// Package service orchestrates means test calculations: it assembles intake
// data, resolves the district threshold, runs the engine, persists the
// result, and composes the informational message.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"clearform/internal/audit"
	districtmodels "clearform/internal/district/models"
	"clearform/internal/eligibility/engine"
	"clearform/internal/eligibility/messages"
	"clearform/internal/eligibility/metrics"
	"clearform/internal/eligibility/models"
	"clearform/internal/eligibility/store"
	intakemodels "clearform/internal/intake/models"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
	"clearform/pkg/platform/sentinel"
	"clearform/pkg/requestcontext"
)

// SnapshotProvider assembles the intake snapshot for a session.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, sessionID id.SessionID) (*intakemodels.Snapshot, error)
}

// ThresholdSource resolves the applicable median income record.
type ThresholdSource interface {
	LatestForDistrict(ctx context.Context, districtID id.DistrictID) (*districtmodels.MedianIncome, error)
}

// DistrictSource resolves district details for message composition.
type DistrictSource interface {
	FindByID(ctx context.Context, districtID id.DistrictID) (*districtmodels.District, error)
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service runs the means test for intake sessions.
type Service struct {
	snapshots  SnapshotProvider
	thresholds ThresholdSource
	districts  DistrictSource
	results    store.ResultStore
	composer   *messages.Composer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	audit      AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// New constructs a Service. The composer must already be vetted.
func New(
	snapshots SnapshotProvider,
	thresholds ThresholdSource,
	districts DistrictSource,
	results store.ResultStore,
	composer *messages.Composer,
	opts ...Option,
) *Service {
	s := &Service{
		snapshots:  snapshots,
		thresholds: thresholds,
		districts:  districts,
		results:    results,
		composer:   composer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateResponse is the wire-facing calculation result.
type CalculateResponse struct {
	ResultID              id.ResultID      `json:"means_test_id"`
	PassesMeansTest       bool             `json:"passes_means_test"`
	QualifiesForFeeWaiver bool             `json:"qualifies_for_fee_waiver"`
	CMI                   string           `json:"cmi"`
	MedianIncomeThreshold string           `json:"median_income_threshold"`
	FamilySize            int              `json:"family_size"`
	Message               string           `json:"message"`
	Details               models.Breakdown `json:"details"`
}

// Calculate runs or re-runs the means test for a session. Recalculation
// replaces the stored result in place; the result ID is stable across runs.
func (s *Service) Calculate(ctx context.Context, sessionID id.SessionID) (*CalculateResponse, error) {
	start := time.Now()

	snap, err := s.snapshots.Snapshot(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load session")
	}
	if snap.Income == nil {
		return nil, dErrors.New(dErrors.CodeMissingReferenceData,
			"income information must be provided before calculating the means test")
	}

	district, err := s.districts.FindByID(ctx, snap.DistrictID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeMissingReferenceData, "district is not configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load district")
	}

	threshold, err := s.resolveThreshold(ctx, snap.DistrictID, snap.Income.FamilySize())
	if err != nil {
		return nil, err
	}

	outcome, err := engine.Calculate(snap.Income, threshold, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		ID:           id.NewResultID(),
		SessionID:    sessionID,
		DistrictID:   snap.DistrictID,
		CMI:          outcome.CMI,
		Threshold:    outcome.Threshold,
		Passes:       outcome.Passes,
		FeeWaiver:    outcome.FeeWaiver,
		FamilySize:   outcome.FamilySize,
		Breakdown:    outcome.Breakdown,
		CalculatedAt: outcome.Breakdown.CalculatedAt,
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist result")
	}

	message := s.composer.Compose(outcome.Passes, outcome.FeeWaiver, district.State)

	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			UserID:    snap.UserID,
			SessionID: sessionID,
			Action:    audit.ActionMeansTestCalculated,
			Detail:    fmt.Sprintf("passes=%t fee_waiver=%t family_size=%d", outcome.Passes, outcome.FeeWaiver, outcome.FamilySize),
		})
	}
	if s.metrics != nil {
		s.metrics.ObserveCalculation(start, outcome.Passes, outcome.FeeWaiver)
	}
	s.logger.InfoContext(ctx, "means test calculated",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"result_id", result.ID,
		"passes", outcome.Passes,
		"fee_waiver", outcome.FeeWaiver,
	)

	return &CalculateResponse{
		ResultID:              result.ID,
		PassesMeansTest:       outcome.Passes,
		QualifiesForFeeWaiver: outcome.FeeWaiver,
		CMI:                   money.Format(outcome.CMI),
		MedianIncomeThreshold: money.Format(outcome.Threshold),
		FamilySize:            outcome.FamilySize,
		Message:               message,
		Details:               outcome.Breakdown,
	}, nil
}

func (s *Service) resolveThreshold(ctx context.Context, districtID id.DistrictID, familySize int) (decimal.Decimal, error) {
	record, err := s.thresholds.LatestForDistrict(ctx, districtID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return decimal.Zero, dErrors.New(dErrors.CodeMissingReferenceData,
				"no median income data is available for this district")
		}
		return decimal.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "load median income")
	}
	return record.AmountFor(familySize)
}

// BreakdownResponse mirrors the persisted calculation for transparency.
type BreakdownResponse struct {
	IncomeHistory struct {
		MonthlyValues []string `json:"monthly_values"`
		AverageCMI    string   `json:"average_cmi"`
	} `json:"income_history"`
	FamilyComposition struct {
		MaritalStatus      intakemodels.MaritalStatus `json:"marital_status"`
		NumberOfDependents int                        `json:"number_of_dependents"`
		TotalFamilySize    int                        `json:"total_family_size"`
	} `json:"family_composition"`
	MeansTestThreshold struct {
		MedianIncome string    `json:"median_income"`
		District     string    `json:"district"`
		CalculatedAt time.Time `json:"calculated_at"`
	} `json:"means_test_threshold"`
	Results struct {
		PassesMeansTest       bool   `json:"passes_means_test"`
		QualifiesForFeeWaiver bool   `json:"qualifies_for_fee_waiver"`
		StatuteCitation       string `json:"statute_citation"`
	} `json:"results"`
}

// Breakdown returns the detailed breakdown of an already-calculated result.
func (s *Service) Breakdown(ctx context.Context, sessionID id.SessionID) (*BreakdownResponse, error) {
	result, err := s.results.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeMissingReferenceData,
				"means test has not been calculated yet")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load result")
	}

	districtCode := ""
	if district, err := s.districts.FindByID(ctx, result.DistrictID); err == nil {
		districtCode = strings.ToUpper(district.Code)
	}

	var resp BreakdownResponse
	resp.IncomeHistory.MonthlyValues = make([]string, len(result.Breakdown.MonthlyIncome))
	for i, amount := range result.Breakdown.MonthlyIncome {
		resp.IncomeHistory.MonthlyValues[i] = money.Format(amount)
	}
	resp.IncomeHistory.AverageCMI = money.Format(result.CMI)
	resp.FamilyComposition.MaritalStatus = result.Breakdown.MaritalStatus
	resp.FamilyComposition.NumberOfDependents = result.Breakdown.Dependents
	resp.FamilyComposition.TotalFamilySize = result.FamilySize
	resp.MeansTestThreshold.MedianIncome = money.Format(result.Threshold)
	resp.MeansTestThreshold.District = districtCode
	resp.MeansTestThreshold.CalculatedAt = result.CalculatedAt
	resp.Results.PassesMeansTest = result.Passes
	resp.Results.QualifiesForFeeWaiver = result.FeeWaiver
	resp.Results.StatuteCitation = result.Breakdown.StatuteCitation
	return &resp, nil
}
