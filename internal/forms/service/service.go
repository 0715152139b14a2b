// Package service orchestrates Form 101 generation: it assembles the
// petition from intake data, persists the generated form, and tracks the
// form's lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clearform/internal/audit"
	districtmodels "clearform/internal/district/models"
	eligibilitymodels "clearform/internal/eligibility/models"
	"clearform/internal/forms/assembler"
	"clearform/internal/forms/metrics"
	"clearform/internal/forms/models"
	"clearform/internal/forms/store"
	intakemodels "clearform/internal/intake/models"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/platform/sentinel"
	"clearform/pkg/requestcontext"
)

// SnapshotProvider assembles the intake snapshot for a session.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, sessionID id.SessionID) (*intakemodels.Snapshot, error)
}

// DistrictSource resolves district details for the filing location block.
type DistrictSource interface {
	FindByID(ctx context.Context, districtID id.DistrictID) (*districtmodels.District, error)
}

// ResultSource reads a session's means test result if one exists.
type ResultSource interface {
	FindBySession(ctx context.Context, sessionID id.SessionID) (*eligibilitymodels.Result, error)
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service generates and tracks official forms.
type Service struct {
	snapshots SnapshotProvider
	districts DistrictSource
	results   ResultSource
	forms     store.FormStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     AuditPublisher
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

// New constructs a Service.
func New(
	snapshots SnapshotProvider,
	districts DistrictSource,
	results ResultSource,
	forms store.FormStore,
	opts ...Option,
) *Service {
	s := &Service{
		snapshots: snapshots,
		districts: districts,
		results:   results,
		forms:     forms,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateResponse is the wire-facing generation result.
type GenerateResponse struct {
	FormID      id.FormID       `json:"form_id"`
	FormType    models.FormType `json:"form_type"`
	FormName    string          `json:"form_name"`
	Status      models.Status   `json:"status"`
	Data        models.FormData `json:"data"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Generate assembles Form 101 and persists it with status generated.
// Regeneration replaces the stored data in place; the form ID is stable.
func (s *Service) Generate(ctx context.Context, sessionID id.SessionID) (*GenerateResponse, error) {
	start := time.Now()

	data, snap, err := s.assemble(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	form := &models.GeneratedForm{
		ID:          id.NewFormID(),
		SessionID:   sessionID,
		FormType:    models.Form101,
		Status:      models.StatusGenerated,
		Data:        data,
		GeneratedAt: now,
		UpdatedAt:   now,
	}
	if err := s.forms.Upsert(ctx, form); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist form")
	}

	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			UserID:    snap.UserID,
			SessionID: sessionID,
			Action:    audit.ActionFormGenerated,
			Detail:    fmt.Sprintf("form_type=%s form_id=%s", form.FormType, form.ID),
		})
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(start)
	}
	s.logger.InfoContext(ctx, "form generated",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"form_id", form.ID,
	)

	return &GenerateResponse{
		FormID:      form.ID,
		FormType:    form.FormType,
		FormName:    form.FormType.DisplayName(),
		Status:      form.Status,
		Data:        form.Data,
		GeneratedAt: form.GeneratedAt,
	}, nil
}

// PreviewResponse is the wire-facing preview, which is never persisted.
type PreviewResponse struct {
	FormType      models.FormType `json:"form_type"`
	FormName      string          `json:"form_name"`
	Preview       bool            `json:"preview"`
	Data          models.FormData `json:"data"`
	UPLDisclaimer string          `json:"upl_disclaimer"`
}

// Preview assembles Form 101 without writing anything.
func (s *Service) Preview(ctx context.Context, sessionID id.SessionID) (*PreviewResponse, error) {
	data, _, err := s.assemble(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementPreviews()
	}
	return &PreviewResponse{
		FormType:      models.Form101,
		FormName:      assembler.FormName,
		Preview:       true,
		Data:          data,
		UPLDisclaimer: assembler.PreviewDisclaimer,
	}, nil
}

func (s *Service) assemble(ctx context.Context, sessionID id.SessionID) (models.FormData, *intakemodels.Snapshot, error) {
	snap, err := s.snapshots.Snapshot(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.FormData{}, nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return models.FormData{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load session")
	}

	district, err := s.districts.FindByID(ctx, snap.DistrictID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.FormData{}, nil, dErrors.New(dErrors.CodeMissingReferenceData, "district is not configured")
		}
		return models.FormData{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load district")
	}

	result, err := s.results.FindBySession(ctx, sessionID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return models.FormData{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load means test result")
	}

	data, err := assembler.Build(snap, district, result)
	if err != nil {
		return models.FormData{}, nil, err
	}
	return data, snap, nil
}

// StatusResponse reports a form's status after a lifecycle transition.
type StatusResponse struct {
	FormID  id.FormID     `json:"form_id"`
	Status  models.Status `json:"status"`
	Message string        `json:"message"`
}

// MarkDownloaded records that the filer downloaded the form. Only a form in
// status generated moves to downloaded; any other state is a no-op success
// so a repeated download click never errors.
func (s *Service) MarkDownloaded(ctx context.Context, formID id.FormID) (*StatusResponse, error) {
	form, err := s.findForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	status := form.Status
	if status == models.StatusGenerated {
		if err := s.forms.SetStatus(ctx, formID, models.StatusDownloaded); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update form status")
		}
		status = models.StatusDownloaded
		s.emitLifecycle(ctx, form, audit.ActionFormDownloaded)
	}

	return &StatusResponse{
		FormID:  formID,
		Status:  status,
		Message: "Form marked as downloaded",
	}, nil
}

// MarkFiled records that the form was filed with the court. Filing is
// recordable from any state.
func (s *Service) MarkFiled(ctx context.Context, formID id.FormID) (*StatusResponse, error) {
	form, err := s.findForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	if err := s.forms.SetStatus(ctx, formID, models.StatusFiled); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update form status")
	}
	s.emitLifecycle(ctx, form, audit.ActionFormFiled)

	return &StatusResponse{
		FormID:  formID,
		Status:  models.StatusFiled,
		Message: "Form marked as filed with court",
	}, nil
}

// Get returns a generated form by ID.
func (s *Service) Get(ctx context.Context, formID id.FormID) (*models.GeneratedForm, error) {
	return s.findForm(ctx, formID)
}

func (s *Service) findForm(ctx context.Context, formID id.FormID) (*models.GeneratedForm, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load form")
	}
	return form, nil
}

func (s *Service) emitLifecycle(ctx context.Context, form *models.GeneratedForm, action audit.Action) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		SessionID: form.SessionID,
		Action:    action,
		Detail:    fmt.Sprintf("form_type=%s form_id=%s", form.FormType, form.ID),
	})
}
