package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	intakemodels "clearform/internal/intake/models"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
)

var calcTime = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func incomeOf(status intakemodels.MaritalStatus, dependents int, months ...string) *intakemodels.IncomeInfo {
	monthly := make([]decimal.Decimal, len(months))
	for i, m := range months {
		monthly[i] = money.MustParse(m)
	}
	return &intakemodels.IncomeInfo{
		MaritalStatus: status,
		Dependents:    dependents,
		MonthlyIncome: monthly,
	}
}

func flatIncome(amount string) *intakemodels.IncomeInfo {
	return incomeOf(intakemodels.Single, 0, amount, amount, amount, amount, amount, amount)
}

func TestCalculateBelowMedian(t *testing.T) {
	outcome, err := Calculate(flatIncome("2000.00"), money.MustParse("3000.00"), calcTime)
	require.NoError(t, err)

	require.True(t, outcome.CMI.Equal(money.MustParse("2000.00")))
	require.True(t, outcome.Passes)
	// The waiver bound is 1800.00; 2000.00 is above it.
	require.False(t, outcome.FeeWaiver)
	require.Equal(t, 1, outcome.FamilySize)
}

func TestCalculateAboveMedianFails(t *testing.T) {
	outcome, err := Calculate(flatIncome("2000.00"), money.MustParse("1500.00"), calcTime)
	require.NoError(t, err)

	require.False(t, outcome.Passes)
	require.False(t, outcome.FeeWaiver)
}

func TestCalculateEqualityFails(t *testing.T) {
	// Income exactly at the threshold does not pass: the comparison is
	// strictly less-than.
	outcome, err := Calculate(flatIncome("3000.00"), money.MustParse("3000.00"), calcTime)
	require.NoError(t, err)
	require.False(t, outcome.Passes)
}

func TestCalculateFeeWaiverBound(t *testing.T) {
	threshold := money.MustParse("3000.00")

	t.Run("below 60 percent qualifies", func(t *testing.T) {
		outcome, err := Calculate(flatIncome("1799.99"), threshold, calcTime)
		require.NoError(t, err)
		require.True(t, outcome.Passes)
		require.True(t, outcome.FeeWaiver)
	})

	t.Run("exactly 60 percent does not", func(t *testing.T) {
		outcome, err := Calculate(flatIncome("1800.00"), threshold, calcTime)
		require.NoError(t, err)
		require.True(t, outcome.Passes)
		require.False(t, outcome.FeeWaiver)
	})
}

func TestCalculateAveragesUnevenMonths(t *testing.T) {
	income := incomeOf(intakemodels.Single, 0,
		"1000.00", "2000.00", "3000.00", "1000.00", "2000.00", "3000.00")
	outcome, err := Calculate(income, money.MustParse("3000.00"), calcTime)
	require.NoError(t, err)
	require.True(t, outcome.CMI.Equal(money.MustParse("2000.00")), "got %s", outcome.CMI)
}

func TestCalculateRoundsToCents(t *testing.T) {
	income := incomeOf(intakemodels.Single, 0,
		"100.00", "100.00", "100.00", "100.00", "100.00", "100.01")
	outcome, err := Calculate(income, money.MustParse("3000.00"), calcTime)
	require.NoError(t, err)
	// 600.01 / 6 = 100.001666..., rounded to cents.
	require.True(t, outcome.CMI.Equal(money.MustParse("100.00")), "got %s", outcome.CMI)
}

func TestCalculateBreakdownSnapshot(t *testing.T) {
	income := incomeOf(intakemodels.MarriedFilingJointly, 2,
		"2000.00", "2000.00", "2000.00", "2000.00", "2000.00", "2000.00")
	outcome, err := Calculate(income, money.MustParse("5000.00"), calcTime)
	require.NoError(t, err)

	b := outcome.Breakdown
	require.Len(t, b.MonthlyIncome, 6)
	require.Equal(t, intakemodels.MarriedFilingJointly, b.MaritalStatus)
	require.Equal(t, 2, b.Dependents)
	require.Equal(t, 4, b.FamilySize)
	require.True(t, b.CMI.Equal(outcome.CMI))
	require.True(t, b.Threshold.Equal(outcome.Threshold))
	require.Equal(t, calcTime, b.CalculatedAt)
	require.Equal(t, "11 U.S.C. § 707(b)", b.StatuteCitation)

	// The breakdown owns its income slice.
	b.MonthlyIncome[0] = money.MustParse("0.00")
	require.True(t, income.MonthlyIncome[0].Equal(money.MustParse("2000.00")))
}

func TestCalculateNilIncome(t *testing.T) {
	_, err := Calculate(nil, money.MustParse("3000.00"), calcTime)
	require.True(t, dErrors.HasCode(err, dErrors.CodeMissingReferenceData))
}

func TestCalculateInvalidIncome(t *testing.T) {
	income := incomeOf(intakemodels.Single, 0, "2000.00", "2000.00")
	_, err := Calculate(income, money.MustParse("3000.00"), calcTime)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
