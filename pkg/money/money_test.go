package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(decimal.NewFromInt(5000), "mvr")
	require.NoError(t, err)
	assert.Equal(t, "MVR", m.Currency)

	_, err = New(decimal.Zero, "US")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = New(decimal.Zero, "US1")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	rent, err := FromString("5000", "MVR")
	require.NoError(t, err)
	fee, err := FromString("150.50", "USD")
	require.NoError(t, err)

	_, err = rent.Add(fee)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestAddSameCurrency(t *testing.T) {
	rent, _ := FromString("5000", "MVR")
	fee, _ := FromString("150.50", "MVR")

	total, err := rent.Add(fee)
	require.NoError(t, err)
	assert.Equal(t, "5150.50 MVR", total.String())
}

func TestRoundUsesCurrencyMinorUnits(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"100.005", "MVR", "100.01 MVR"},
		{"100.004", "MVR", "100.00 MVR"},
		{"100.5", "JPY", "101 JPY"},
		{"1.2345", "BHD", "1.235 BHD"},
	}
	for _, tc := range cases {
		m, err := FromString(tc.amount, tc.currency)
		require.NoError(t, err)
		assert.Equal(t, tc.want, m.Round().String())
	}
}

func TestZeroAndSigns(t *testing.T) {
	z := Zero("MVR")
	assert.True(t, z.IsZero())
	assert.False(t, z.IsNegative())

	neg, _ := FromString("-1", "MVR")
	assert.True(t, neg.IsNegative())

	less, err := z.LessThan(neg)
	require.NoError(t, err)
	assert.False(t, less)
}
