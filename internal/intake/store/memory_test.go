package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"clearform/internal/intake/models"
	id "clearform/pkg/domain"
	"clearform/pkg/money"
	"clearform/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *InMemorySuite) newSession() *models.Session {
	session := &models.Session{
		ID:          id.NewSessionID(),
		UserID:      id.UserID{},
		DistrictID:  id.NewDistrictID(),
		Status:      models.StatusStarted,
		CurrentStep: 1,
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.store.Save(s.ctx, session))
	return session
}

func (s *InMemorySuite) TestFindByID() {
	session := s.newSession()

	found, err := s.store.FindByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, found.ID)
	s.Equal(models.StatusStarted, found.Status)

	_, err = s.store.FindByID(s.ctx, id.NewSessionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestStepWritesRequireSession() {
	missing := id.NewSessionID()
	s.Require().ErrorIs(s.store.SaveDebtor(s.ctx, &models.DebtorInfo{SessionID: missing}), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.SaveIncome(s.ctx, &models.IncomeInfo{SessionID: missing}), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.SetHasAssets(s.ctx, missing, true), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.SetHasDebts(s.ctx, missing, true), sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestSnapshotSectionsOptional() {
	session := s.newSession()

	snap, err := s.store.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Nil(snap.Debtor)
	s.Nil(snap.Income)
	s.False(snap.HasAssets)
	s.Equal(session.DistrictID, snap.DistrictID)

	income := &models.IncomeInfo{
		SessionID:     session.ID,
		MaritalStatus: models.Single,
		MonthlyIncome: []decimal.Decimal{
			money.MustParse("2000.00"), money.MustParse("2000.00"), money.MustParse("2000.00"),
			money.MustParse("2000.00"), money.MustParse("2000.00"), money.MustParse("2000.00"),
		},
	}
	s.Require().NoError(s.store.SaveIncome(s.ctx, income))
	s.Require().NoError(s.store.SetHasAssets(s.ctx, session.ID, true))

	snap, err = s.store.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Nil(snap.Debtor)
	s.Require().NotNil(snap.Income)
	s.Len(snap.Income.MonthlyIncome, 6)
	s.True(snap.HasAssets)
}

func (s *InMemorySuite) TestStepResubmissionReplaces() {
	session := s.newSession()

	first := &models.IncomeInfo{SessionID: session.ID, MaritalStatus: models.Single, Dependents: 0}
	s.Require().NoError(s.store.SaveIncome(s.ctx, first))

	second := &models.IncomeInfo{SessionID: session.ID, MaritalStatus: models.MarriedFilingJointly, Dependents: 2}
	s.Require().NoError(s.store.SaveIncome(s.ctx, second))

	snap, err := s.store.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(models.MarriedFilingJointly, snap.Income.MaritalStatus)
	s.Equal(2, snap.Income.Dependents)
}

func (s *InMemorySuite) TestSnapshotIsolatedFromStore() {
	session := s.newSession()
	income := &models.IncomeInfo{
		SessionID:     session.ID,
		MaritalStatus: models.Single,
		MonthlyIncome: []decimal.Decimal{money.MustParse("1.00"), money.MustParse("2.00"), money.MustParse("3.00"), money.MustParse("4.00"), money.MustParse("5.00"), money.MustParse("6.00")},
	}
	s.Require().NoError(s.store.SaveIncome(s.ctx, income))

	snap, err := s.store.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	snap.Income.MonthlyIncome[0] = money.MustParse("999.00")

	again, err := s.store.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(again.Income.MonthlyIncome[0].Equal(money.MustParse("1.00")))
}
