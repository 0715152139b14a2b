package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"clearform/internal/audit"
	districtmodels "clearform/internal/district/models"
	districtstore "clearform/internal/district/store"
	"clearform/internal/eligibility/messages"
	eligibilitystore "clearform/internal/eligibility/store"
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
	audit     *recordingAudit
	svc       *Service

	districtID id.DistrictID
	sessionID  id.SessionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var calcTime = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), calcTime)
	s.intake = intakestore.NewInMemory()
	s.districts = districtstore.NewInMemory()
	s.results = eligibilitystore.NewInMemory()
	s.audit = &recordingAudit{}
	s.svc = New(s.intake, s.districts, s.districts, s.results, messages.MustDefaultComposer(),
		WithAuditPublisher(s.audit))

	s.districtID = id.NewDistrictID()
	s.Require().NoError(s.districts.Save(s.ctx, &districtmodels.District{
		ID:    s.districtID,
		Code:  "ilnd",
		Name:  "Northern District of Illinois",
		State: "IL",
	}))

	s.sessionID = id.NewSessionID()
	s.Require().NoError(s.intake.Save(s.ctx, &intakemodels.Session{
		ID:         s.sessionID,
		DistrictID: s.districtID,
		Status:     intakemodels.StatusInProgress,
		CreatedAt:  calcTime,
	}))
}

// seedThreshold installs a flat annual threshold of 3000.00 for a one-person
// household, scaling upward by family size slot.
func (s *ServiceSuite) seedThreshold(base string, increment string) {
	threshold := &districtmodels.MedianIncome{
		ID:            uuid.New(),
		DistrictID:    s.districtID,
		EffectiveDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range threshold.FamilySizes {
		threshold.FamilySizes[i] = money.MustParse(base)
	}
	if increment != "" {
		threshold.AdditionalIncrement = money.MustParse(increment)
	}
	s.Require().NoError(s.districts.Put(s.ctx, threshold))
}

func (s *ServiceSuite) seedIncome(monthly string, status intakemodels.MaritalStatus, dependents int) {
	income := &intakemodels.IncomeInfo{
		SessionID:     s.sessionID,
		MaritalStatus: status,
		Dependents:    dependents,
		MonthlyIncome: make([]decimal.Decimal, 6),
		CreatedAt:     calcTime,
	}
	for i := range income.MonthlyIncome {
		income.MonthlyIncome[i] = money.MustParse(monthly)
	}
	s.Require().NoError(s.intake.SaveIncome(s.ctx, income))
}

func (s *ServiceSuite) TestCalculatePasses() {
	s.seedThreshold("3000.00", "")
	s.seedIncome("2000.00", intakemodels.Single, 0)

	resp, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.True(resp.PassesMeansTest)
	s.False(resp.QualifiesForFeeWaiver)
	s.Equal("2000.00", resp.CMI)
	s.Equal("3000.00", resp.MedianIncomeThreshold)
	s.Equal(1, resp.FamilySize)
	s.Contains(resp.Message, "below the median")
	s.Contains(resp.Message, "in IL")
	s.False(resp.ResultID.IsNil())

	s.Require().Len(s.audit.events, 1)
	s.Equal(audit.ActionMeansTestCalculated, s.audit.events[0].Action)
	s.Equal(s.sessionID, s.audit.events[0].SessionID)
}

func (s *ServiceSuite) TestCalculateFails() {
	s.seedThreshold("1500.00", "")
	s.seedIncome("2000.00", intakemodels.Single, 0)

	resp, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.False(resp.PassesMeansTest)
	s.Contains(resp.Message, "above the median")
	s.Contains(resp.Message, "Chapter 13")
}

func (s *ServiceSuite) TestCalculateFeeWaiver() {
	s.seedThreshold("3000.00", "")
	s.seedIncome("1500.00", intakemodels.Single, 0)

	resp, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.True(resp.PassesMeansTest)
	s.True(resp.QualifiesForFeeWaiver)
	s.Contains(resp.Message, "28 U.S.C. § 1930(f)")
}

func (s *ServiceSuite) TestRecalculationKeepsResultID() {
	s.seedThreshold("3000.00", "")
	s.seedIncome("2000.00", intakemodels.Single, 0)

	first, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	// The filer corrects their income upward and recalculates.
	s.seedIncome("4000.00", intakemodels.Single, 0)
	second, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Equal(first.ResultID, second.ResultID, "recalculation must not mint a new result")
	s.True(first.PassesMeansTest)
	s.False(second.PassesMeansTest)

	stored, err := s.results.FindBySession(s.ctx, s.sessionID)
	s.Require().NoError(err)
	s.True(stored.CMI.Equal(money.MustParse("4000.00")))
}

func (s *ServiceSuite) TestCalculateWithoutIncome() {
	s.seedThreshold("3000.00", "")

	_, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingReferenceData))

	_, err = s.results.FindBySession(s.ctx, s.sessionID)
	s.Error(err, "no result may be written on validation failure")
	s.Empty(s.audit.events)
}

func (s *ServiceSuite) TestCalculateWithoutThresholdData() {
	s.seedIncome("2000.00", intakemodels.Single, 0)

	_, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingReferenceData))
}

func (s *ServiceSuite) TestCalculateUnknownSession() {
	_, err := s.svc.Calculate(s.ctx, id.NewSessionID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestLargeHouseholdUsesIncrement() {
	// Family size 10: spouse plus eight dependents. Slot 8 amount 5000.00
	// plus two increments of 500.00.
	s.seedThreshold("5000.00", "500.00")
	s.seedIncome("5900.00", intakemodels.MarriedFilingJointly, 8)

	resp, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Equal(10, resp.FamilySize)
	s.Equal("6000.00", resp.MedianIncomeThreshold)
	s.True(resp.PassesMeansTest)
}

func (s *ServiceSuite) TestBreakdown() {
	s.seedThreshold("3000.00", "")
	s.seedIncome("2000.00", intakemodels.MarriedFilingJointly, 1)

	_, err := s.svc.Calculate(s.ctx, s.sessionID)
	s.Require().NoError(err)

	breakdown, err := s.svc.Breakdown(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Len(breakdown.IncomeHistory.MonthlyValues, 6)
	s.Equal("2000.00", breakdown.IncomeHistory.AverageCMI)
	s.Equal(intakemodels.MarriedFilingJointly, breakdown.FamilyComposition.MaritalStatus)
	s.Equal(3, breakdown.FamilyComposition.TotalFamilySize)
	s.Equal("ILND", breakdown.MeansTestThreshold.District)
	s.Equal(calcTime, breakdown.MeansTestThreshold.CalculatedAt)
	s.True(breakdown.Results.PassesMeansTest)
	s.Equal("11 U.S.C. § 707(b)", breakdown.Results.StatuteCitation)
}

func (s *ServiceSuite) TestBreakdownBeforeCalculation() {
	_, err := s.svc.Breakdown(s.ctx, s.sessionID)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingReferenceData))
	s.Contains(err.Error(), "has not been calculated")
}
