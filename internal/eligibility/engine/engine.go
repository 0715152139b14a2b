// Package engine implements the Chapter 7 means test comparison under
// 11 U.S.C. § 707(b)(7): current monthly income against the state median for
// the household size.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"clearform/internal/eligibility/models"
	intakemodels "clearform/internal/intake/models"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
)

// StatuteCitation accompanies every result so downstream surfaces can point
// at the governing statute without restating it.
const StatuteCitation = "11 U.S.C. § 707(b)"

var (
	sixMonths = decimal.NewFromInt(6)
	// feeWaiverFraction approximates the 28 U.S.C. § 1930(f) test as income
	// under 60 percent of the applicable median. The statutory test is based
	// on the federal poverty line; this simplification is why the composed
	// message says "may qualify", never a determination.
	feeWaiverFraction = decimal.RequireFromString("0.60")
)

// Outcome is a pure calculation result, unattached to any session.
type Outcome struct {
	CMI        decimal.Decimal
	Threshold  decimal.Decimal
	Passes     bool
	FeeWaiver  bool
	FamilySize int
	Breakdown  models.Breakdown
}

// Calculate runs the means test. CMI is the six-month average of reported
// income, rounded to cents. Both comparisons are strictly less-than: income
// exactly at the threshold does not pass, and exactly at 60 percent of the
// threshold does not qualify for the fee waiver.
func Calculate(income *intakemodels.IncomeInfo, threshold decimal.Decimal, now time.Time) (Outcome, error) {
	if income == nil {
		return Outcome{}, dErrors.New(dErrors.CodeMissingReferenceData,
			"income information must be provided before calculating the means test")
	}
	if err := income.Validate(); err != nil {
		return Outcome{}, err
	}

	cmi := money.Sum(income.MonthlyIncome).Div(sixMonths).Round(2)
	passes := cmi.LessThan(threshold)
	feeWaiver := cmi.LessThan(threshold.Mul(feeWaiverFraction))
	familySize := income.FamilySize()

	monthly := append([]decimal.Decimal(nil), income.MonthlyIncome...)
	return Outcome{
		CMI:        cmi,
		Threshold:  threshold,
		Passes:     passes,
		FeeWaiver:  feeWaiver,
		FamilySize: familySize,
		Breakdown: models.Breakdown{
			MonthlyIncome:   monthly,
			MaritalStatus:   income.MaritalStatus,
			Dependents:      income.Dependents,
			FamilySize:      familySize,
			CMI:             cmi,
			Threshold:       threshold,
			Passes:          passes,
			FeeWaiver:       feeWaiver,
			CalculatedAt:    now.UTC(),
			StatuteCitation: StatuteCitation,
		},
	}, nil
}
