// Package money holds the decimal helpers the calculation engine relies on.
//
// Monetary amounts are decimal.Decimal everywhere. Binary floating point is
// never used for money: the means test compares amounts with strict
// inequality at exact boundaries, and float drift at those boundaries would
// change legal outcomes.
package money

import (
	"github.com/shopspring/decimal"

	dErrors "clearform/pkg/domain-errors"
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse converts external input into an amount. Empty strings and
// unparseable values are rejected; negative amounts are allowed here because
// callers decide whether sign is meaningful (income is non-negative, but
// adjustments may not be).
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, dErrors.Newf(dErrors.CodeInvalidInput, "amount %q is not a valid decimal", s)
	}
	return d, nil
}

// MustParse converts a trusted literal into an amount, panicking on error.
// For package-level constants only.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Sum adds a slice of amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount with two decimal places for display, e.g. "338.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
