// Package models defines the bankruptcy district reference data: districts,
// median income thresholds, exemption schedules, and local rules. This data
// is owned by an external reference-data pipeline and is read-only here.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
)

// District represents a U.S. Bankruptcy Court District.
type District struct {
	ID                  id.DistrictID   `json:"id"`
	Code                string          `json:"code"`  // short code, e.g. "ilnd"
	Name                string          `json:"name"`  // full district name
	State               string          `json:"state"` // two-letter abbreviation
	CourtName           string          `json:"court_name"`
	ProSeEFilingAllowed bool            `json:"pro_se_efiling_allowed"`
	FilingFeeChapter7   decimal.Decimal `json:"filing_fee_chapter_7"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// defaultAdditionalIncrement is the statutory-adjustment placeholder applied
// per household member above eight when the threshold record does not carry
// an explicit increment.
var defaultAdditionalIncrement = money.MustParse("9900.00")

// MedianIncome holds the median household income thresholds for one district
// and effective period.
//
// Invariants:
//   - exactly eight family-size amounts (1..8)
//   - (DistrictID, EffectiveDate) is unique
//   - immutable once created
type MedianIncome struct {
	ID            uuid.UUID
	DistrictID    id.DistrictID
	EffectiveDate time.Time
	// FamilySizes holds the median income for household sizes 1 through 8,
	// index 0 being a one-person household.
	FamilySizes [8]decimal.Decimal
	// AdditionalIncrement is added per member above eight. Zero means "not
	// configured" and falls back to the statutory placeholder.
	AdditionalIncrement decimal.Decimal
	CreatedAt           time.Time
}

// AmountFor resolves the median income threshold for a family size.
// Sizes 1..8 map directly to stored amounts; larger households extend the
// size-8 amount linearly by the additional-member increment.
func (m *MedianIncome) AmountFor(familySize int) (decimal.Decimal, error) {
	if familySize < 1 {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "family size must be at least 1")
	}

	if familySize <= 8 {
		return m.FamilySizes[familySize-1], nil
	}

	increment := m.AdditionalIncrement
	if increment.IsZero() {
		increment = defaultAdditionalIncrement
	}
	extra := decimal.NewFromInt(int64(familySize - 8))
	return m.FamilySizes[7].Add(extra.Mul(increment)), nil
}

// ExemptionType classifies asset exemption categories.
type ExemptionType string

const (
	ExemptionHomestead    ExemptionType = "homestead"
	ExemptionVehicle      ExemptionType = "vehicle"
	ExemptionToolsOfTrade ExemptionType = "tools_of_trade"
	ExemptionWildcard     ExemptionType = "wildcard"
)

// ExemptionSchedule lists the exemption amount for one asset category in a
// district.
type ExemptionSchedule struct {
	DistrictID      id.DistrictID   `json:"district_id"`
	Type            ExemptionType   `json:"exemption_type"`
	Amount          decimal.Decimal `json:"amount"`
	StatuteCitation string          `json:"statute_citation"`
	Description     string          `json:"description"`
}

// LocalRule is a district-local procedural rule.
type LocalRule struct {
	DistrictID    id.DistrictID `json:"district_id"`
	RuleNumber    string        `json:"rule_number"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	EffectiveDate time.Time     `json:"effective_date"`
}
