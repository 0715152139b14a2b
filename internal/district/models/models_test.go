package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
)

func TestAmountForDirectLookup(t *testing.T) {
	m := &MedianIncome{}
	amounts := []string{"3000", "3600", "4200", "4800", "5400", "6000", "6600", "7200"}
	for i, s := range amounts {
		m.FamilySizes[i] = money.MustParse(s)
	}

	for size := 1; size <= 8; size++ {
		got, err := m.AmountFor(size)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.MustParse(amounts[size-1])),
			"family size %d: got %s want %s", size, got, amounts[size-1])
	}
}

func TestAmountForExtrapolation(t *testing.T) {
	m := &MedianIncome{}
	m.FamilySizes[7] = money.MustParse("5000")

	t.Run("uses configured increment", func(t *testing.T) {
		m.AdditionalIncrement = money.MustParse("500")

		got, err := m.AmountFor(9)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.MustParse("5500")))

		got, err = m.AmountFor(10)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.MustParse("6000")), "size 10 = 5000 + 2x500")
	})

	t.Run("falls back to statutory placeholder", func(t *testing.T) {
		m.AdditionalIncrement = money.Zero

		got, err := m.AmountFor(9)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.MustParse("14900.00")), "5000 + 9900.00 default increment")
	})
}

func TestAmountForRejectsBadFamilySize(t *testing.T) {
	m := &MedianIncome{}
	for _, size := range []int{0, -1, -8} {
		_, err := m.AmountFor(size)
		require.Error(t, err, "family size %d", size)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}
