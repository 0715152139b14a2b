package store

import (
	"context"
	"strings"
	"sync"

	"clearform/internal/district/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// InMemory keeps reference data in memory for tests and local development.
type InMemory struct {
	mu         sync.RWMutex
	districts  map[id.DistrictID]*models.District
	byCode     map[string]id.DistrictID
	thresholds map[id.DistrictID][]*models.MedianIncome
	exemptions map[id.DistrictID][]models.ExemptionSchedule
	localRules map[id.DistrictID][]models.LocalRule
}

func NewInMemory() *InMemory {
	return &InMemory{
		districts:  make(map[id.DistrictID]*models.District),
		byCode:     make(map[string]id.DistrictID),
		thresholds: make(map[id.DistrictID][]*models.MedianIncome),
		exemptions: make(map[id.DistrictID][]models.ExemptionSchedule),
		localRules: make(map[id.DistrictID][]models.LocalRule),
	}
}

func (s *InMemory) Save(_ context.Context, district *models.District) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *district
	s.districts[district.ID] = &d
	s.byCode[strings.ToLower(district.Code)] = district.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, districtID id.DistrictID) (*models.District, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.districts[districtID]; ok {
		dup := *d
		return &dup, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByCode(_ context.Context, code string) (*models.District, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if districtID, ok := s.byCode[strings.ToLower(code)]; ok {
		dup := *s.districts[districtID]
		return &dup, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, threshold *models.MedianIncome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.thresholds[threshold.DistrictID] {
		if existing.EffectiveDate.Equal(threshold.EffectiveDate) {
			return sentinel.ErrConflict
		}
	}
	t := *threshold
	s.thresholds[threshold.DistrictID] = append(s.thresholds[threshold.DistrictID], &t)
	return nil
}

// LatestForDistrict returns the threshold with the most recent effective
// date, regardless of whether that date is in the future.
func (s *InMemory) LatestForDistrict(_ context.Context, districtID id.DistrictID) (*models.MedianIncome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.MedianIncome
	for _, threshold := range s.thresholds[districtID] {
		if latest == nil || threshold.EffectiveDate.After(latest.EffectiveDate) {
			latest = threshold
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	dup := *latest
	return &dup, nil
}

func (s *InMemory) AddExemption(_ context.Context, e models.ExemptionSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exemptions[e.DistrictID] = append(s.exemptions[e.DistrictID], e)
}

func (s *InMemory) ExemptionsForDistrict(_ context.Context, districtID id.DistrictID) ([]models.ExemptionSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ExemptionSchedule{}, s.exemptions[districtID]...), nil
}

func (s *InMemory) AddLocalRule(_ context.Context, r models.LocalRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localRules[r.DistrictID] = append(s.localRules[r.DistrictID], r)
}

func (s *InMemory) LocalRulesForDistrict(_ context.Context, districtID id.DistrictID) ([]models.LocalRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LocalRule{}, s.localRules[districtID]...), nil
}
