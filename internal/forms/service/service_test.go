package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clearform/internal/audit"
	districtmodels "clearform/internal/district/models"
	districtstore "clearform/internal/district/store"
	eligibilitymodels "clearform/internal/eligibility/models"
	eligibilitystore "clearform/internal/eligibility/store"
	formsmodels "clearform/internal/forms/models"
	formsstore "clearform/internal/forms/store"
	intakemodels "clearform/internal/intake/models"
	intakestore "clearform/internal/intake/store"
	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
	"clearform/pkg/requestcontext"
)

type recordingAudit struct {
	events []audit.Event
}

func (r *recordingAudit) Emit(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	intake    *intakestore.InMemory
	districts *districtstore.InMemory
	results   *eligibilitystore.InMemory
	forms     *formsstore.InMemory
	audit     *recordingAudit
	svc       *Service

	sessionID id.SessionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var genTime = time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), genTime)
	s.intake = intakestore.NewInMemory()
	s.districts = districtstore.NewInMemory()
	s.results = eligibilitystore.NewInMemory()
	s.forms = formsstore.NewInMemory()
	s.audit = &recordingAudit{}
	s.svc = New(s.intake, s.districts, s.results, s.forms, WithAuditPublisher(s.audit))

	districtID := id.NewDistrictID()
	s.Require().NoError(s.districts.Save(s.ctx, &districtmodels.District{
		ID:                districtID,
		Code:              "ilnd",
		Name:              "Northern District of Illinois",
		CourtName:         "U.S. Bankruptcy Court for the Northern District of Illinois",
		State:             "IL",
		FilingFeeChapter7: money.MustParse("338.00"),
	}))

	s.sessionID = id.NewSessionID()
	s.Require().NoError(s.intake.Save(s.ctx, &intakemodels.Session{
		ID:         s.sessionID,
		DistrictID: districtID,
		Status:     intakemodels.StatusInProgress,
		CreatedAt:  genTime,
	}))
	s.Require().NoError(s.intake.SaveDebtor(s.ctx, &intakemodels.DebtorInfo{
		SessionID:     s.sessionID,
		FirstName:     "Jane",
		LastName:      "Doe",
		StreetAddress: "123 Main St",
		City:          "Chicago",
		State:         "IL",
		ZipCode:       "60601",
	}))
}

func (s *ServiceSuite) TestGenerate() {
	resp, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Equal(formsmodels.Form101, resp.FormType)
	s.Equal("Form 101 - Voluntary Petition", resp.FormName)
	s.Equal(formsmodels.StatusGenerated, resp.Status)
	s.Equal("Jane Doe", resp.Data.DebtorName.FullName)
	s.Equal(genTime, resp.GeneratedAt)
	s.False(resp.FormID.IsNil())

	s.Require().Len(s.audit.events, 1)
	s.Equal(audit.ActionFormGenerated, s.audit.events[0].Action)
}

func (s *ServiceSuite) TestRegenerateKeepsFormID() {
	first, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	// Calculate lands between generations; regeneration must pick it up.
	s.Require().NoError(s.results.Upsert(s.ctx, &eligibilitymodels.Result{
		ID:        id.NewResultID(),
		SessionID: s.sessionID,
		Passes:    true,
		CMI:       money.MustParse("2000.00"),
		Threshold: money.MustParse("3000.00"),
	}))

	second, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Equal(first.FormID, second.FormID, "regeneration must not mint a new form")
	s.False(first.Data.MeansTest.Calculated)
	s.True(second.Data.MeansTest.Calculated)
}

func (s *ServiceSuite) TestGenerateWithoutDebtor() {
	bare := id.NewSessionID()
	s.Require().NoError(s.intake.Save(s.ctx, &intakemodels.Session{
		ID:         bare,
		DistrictID: s.mustDistrictID(),
		Status:     intakemodels.StatusStarted,
		CreatedAt:  genTime,
	}))

	_, err := s.svc.Generate(s.ctx, bare)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingReferenceData))
	s.Empty(s.audit.events)
}

func (s *ServiceSuite) mustDistrictID() id.DistrictID {
	d, err := s.districts.FindByCode(s.ctx, "ilnd")
	s.Require().NoError(err)
	return d.ID
}

func (s *ServiceSuite) TestPreviewNeverWrites() {
	resp, err := s.svc.Preview(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.True(resp.Preview)
	s.Contains(resp.UPLDisclaimer, "legal information, not legal advice")

	_, err = s.forms.FindBySessionAndType(s.ctx, s.sessionID, formsmodels.Form101)
	s.Error(err, "preview must not persist a form")
	s.Empty(s.audit.events)
}

func (s *ServiceSuite) TestMarkDownloadedTransitions() {
	generated, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	resp, err := s.svc.MarkDownloaded(s.ctx, generated.FormID)
	s.Require().NoError(err)
	s.Equal(formsmodels.StatusDownloaded, resp.Status)

	// Second call is a no-op success.
	resp, err = s.svc.MarkDownloaded(s.ctx, generated.FormID)
	s.Require().NoError(err)
	s.Equal(formsmodels.StatusDownloaded, resp.Status)
}

func (s *ServiceSuite) TestMarkDownloadedAfterFiledIsNoOp() {
	generated, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	_, err = s.svc.MarkFiled(s.ctx, generated.FormID)
	s.Require().NoError(err)

	resp, err := s.svc.MarkDownloaded(s.ctx, generated.FormID)
	s.Require().NoError(err)
	s.Equal(formsmodels.StatusFiled, resp.Status, "downloading a filed form must not regress its status")
}

func (s *ServiceSuite) TestMarkFiledFromAnyState() {
	generated, err := s.svc.Generate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	resp, err := s.svc.MarkFiled(s.ctx, generated.FormID)
	s.Require().NoError(err)
	s.Equal(formsmodels.StatusFiled, resp.Status)
	s.Equal("Form marked as filed with court", resp.Message)

	actions := make([]audit.Action, 0, len(s.audit.events))
	for _, e := range s.audit.events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, audit.ActionFormFiled)
}

func (s *ServiceSuite) TestLifecycleUnknownForm() {
	_, err := s.svc.MarkDownloaded(s.ctx, id.NewFormID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.MarkFiled(s.ctx, id.NewFormID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
