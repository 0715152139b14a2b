package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"clearform/internal/intake/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded SessionStore for tests and single-node runs.
type InMemory struct {
	mu        sync.RWMutex
	sessions  map[id.SessionID]models.Session
	debtors   map[id.SessionID]models.DebtorInfo
	incomes   map[id.SessionID]models.IncomeInfo
	hasAssets map[id.SessionID]bool
	hasDebts  map[id.SessionID]bool
}

func NewInMemory() *InMemory {
	return &InMemory{
		sessions:  make(map[id.SessionID]models.Session),
		debtors:   make(map[id.SessionID]models.DebtorInfo),
		incomes:   make(map[id.SessionID]models.IncomeInfo),
		hasAssets: make(map[id.SessionID]bool),
		hasDebts:  make(map[id.SessionID]bool),
	}
}

func (s *InMemory) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}

func (s *InMemory) SaveDebtor(_ context.Context, info *models.DebtorInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[info.SessionID]; !ok {
		return sentinel.ErrNotFound
	}
	s.debtors[info.SessionID] = *info
	return nil
}

func (s *InMemory) SaveIncome(_ context.Context, info *models.IncomeInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[info.SessionID]; !ok {
		return sentinel.ErrNotFound
	}
	s.incomes[info.SessionID] = *info
	return nil
}

func (s *InMemory) SetHasAssets(_ context.Context, sessionID id.SessionID, has bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	s.hasAssets[sessionID] = has
	return nil
}

func (s *InMemory) SetHasDebts(_ context.Context, sessionID id.SessionID, has bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	s.hasDebts[sessionID] = has
	return nil
}

func (s *InMemory) Snapshot(_ context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snap := &models.Snapshot{
		SessionID:  session.ID,
		UserID:     session.UserID,
		DistrictID: session.DistrictID,
		HasAssets:  s.hasAssets[sessionID],
		HasDebts:   s.hasDebts[sessionID],
	}
	if debtor, ok := s.debtors[sessionID]; ok {
		d := debtor
		snap.Debtor = &d
	}
	if income, ok := s.incomes[sessionID]; ok {
		in := income
		in.MonthlyIncome = append([]decimal.Decimal(nil), income.MonthlyIncome...)
		snap.Income = &in
	}
	return snap, nil
}
