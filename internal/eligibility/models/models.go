// Package models defines the persisted means test result.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	intakemodels "clearform/internal/intake/models"
	id "clearform/pkg/domain"
)

// Breakdown is the full calculation snapshot kept alongside a result. It is
// sealed before it reaches a persistent store because it embeds the filer's
// raw income history.
type Breakdown struct {
	MonthlyIncome   []decimal.Decimal          `json:"monthly_income_breakdown"`
	MaritalStatus   intakemodels.MaritalStatus `json:"marital_status"`
	Dependents      int                        `json:"number_of_dependents"`
	FamilySize      int                        `json:"family_size"`
	CMI             decimal.Decimal            `json:"current_monthly_income"`
	Threshold       decimal.Decimal            `json:"median_income_threshold"`
	Passes          bool                       `json:"passes_means_test"`
	FeeWaiver       bool                       `json:"qualifies_for_fee_waiver"`
	CalculatedAt    time.Time                  `json:"calculated_at"`
	StatuteCitation string                     `json:"statute_citation"`
}

// Result is one session's means test outcome. A session has at most one
// result; recalculating replaces the values but keeps the identity.
type Result struct {
	ID           id.ResultID     `json:"id"`
	SessionID    id.SessionID    `json:"session_id"`
	DistrictID   id.DistrictID   `json:"district_id"`
	CMI          decimal.Decimal `json:"cmi"`
	Threshold    decimal.Decimal `json:"median_income_threshold"`
	Passes       bool            `json:"passes_means_test"`
	FeeWaiver    bool            `json:"qualifies_for_fee_waiver"`
	FamilySize   int             `json:"family_size"`
	Breakdown    Breakdown       `json:"details"`
	CalculatedAt time.Time       `json:"calculated_at"`
}
