// Package store persists district reference data. Both implementations are
// read-mostly: writes exist only for seeding and the external reference-data
// pipeline.
package store

import (
	"context"

	"clearform/internal/district/models"
	id "clearform/pkg/domain"
)

// DistrictStore reads district records.
type DistrictStore interface {
	FindByID(ctx context.Context, districtID id.DistrictID) (*models.District, error)
	FindByCode(ctx context.Context, code string) (*models.District, error)
	Save(ctx context.Context, district *models.District) error
}

// MedianIncomeStore reads median income thresholds.
//
// LatestForDistrict returns the threshold with the most recent effective
// date, with no evaluation-date filter. That is the established lookup
// policy; see DESIGN.md before changing it.
type MedianIncomeStore interface {
	LatestForDistrict(ctx context.Context, districtID id.DistrictID) (*models.MedianIncome, error)
	Put(ctx context.Context, threshold *models.MedianIncome) error
}

// ReferenceStore reads the supplementary district reference data.
type ReferenceStore interface {
	ExemptionsForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.ExemptionSchedule, error)
	LocalRulesForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.LocalRule, error)
}
