package store

import (
	"context"
	"sync"
	"time"

	"clearform/internal/forms/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

type formKey struct {
	sessionID id.SessionID
	formType  models.FormType
}

// InMemory is a mutex-guarded FormStore.
type InMemory struct {
	mu    sync.RWMutex
	byKey map[formKey]models.GeneratedForm
	byID  map[id.FormID]formKey
}

func NewInMemory() *InMemory {
	return &InMemory{
		byKey: make(map[formKey]models.GeneratedForm),
		byID:  make(map[id.FormID]formKey),
	}
}

func (s *InMemory) Upsert(_ context.Context, form *models.GeneratedForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := formKey{sessionID: form.SessionID, formType: form.FormType}
	if existing, ok := s.byKey[key]; ok {
		form.ID = existing.ID
		form.GeneratedAt = existing.GeneratedAt
	}
	s.byKey[key] = *form
	s.byID[form.ID] = key
	return nil
}

func (s *InMemory) FindByID(_ context.Context, formID id.FormID) (*models.GeneratedForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.byID[formID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	form := s.byKey[key]
	return &form, nil
}

func (s *InMemory) FindBySessionAndType(_ context.Context, sessionID id.SessionID, formType models.FormType) (*models.GeneratedForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.byKey[formKey{sessionID: sessionID, formType: formType}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &form, nil
}

func (s *InMemory) SetStatus(_ context.Context, formID id.FormID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.byID[formID]
	if !ok {
		return sentinel.ErrNotFound
	}
	form := s.byKey[key]
	form.Status = status
	form.UpdatedAt = time.Now().UTC()
	s.byKey[key] = form
	return nil
}
