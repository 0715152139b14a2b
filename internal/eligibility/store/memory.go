package store

import (
	"context"
	"sync"

	"clearform/internal/eligibility/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded ResultStore.
type InMemory struct {
	mu      sync.RWMutex
	results map[id.SessionID]models.Result
}

func NewInMemory() *InMemory {
	return &InMemory{results: make(map[id.SessionID]models.Result)}
}

func (s *InMemory) Upsert(_ context.Context, result *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.results[result.SessionID]; ok {
		result.ID = existing.ID
	}
	s.results[result.SessionID] = *result
	return nil
}

func (s *InMemory) FindBySession(_ context.Context, sessionID id.SessionID) (*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &result, nil
}
