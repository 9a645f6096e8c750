package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusPending, InvoiceStatusSent, true},
		{InvoiceStatusPending, InvoiceStatusPaid, true},
		{InvoiceStatusPending, InvoiceStatusOverdue, true},
		{InvoiceStatusPending, InvoiceStatusCancelled, true},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusCancelled, true},
		{InvoiceStatusSent, InvoiceStatusPending, false},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusCancelled, true},
		{InvoiceStatusOverdue, InvoiceStatusSent, false},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusPaid, InvoiceStatusOverdue, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
		{InvoiceStatusCancelled, InvoiceStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	all := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}

	for _, terminal := range []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusCancelled} {
		assert.True(t, terminal.Terminal())
		for _, to := range all {
			assert.False(t, CanTransition(terminal, to), "%s -> %s must be rejected", terminal, to)
		}
	}
}

func TestTransitionErrorMatchesSentinel(t *testing.T) {
	err := &TransitionError{From: InvoiceStatusPaid, To: InvoiceStatusCancelled}
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "PAID")
	assert.Contains(t, err.Error(), "CANCELLED")
}

func TestInvoiceNumberFormat(t *testing.T) {
	assert.Equal(t, "INV-000001", InvoiceNumberFormat(1))
	assert.Equal(t, "INV-000042", InvoiceNumberFormat(42))
	assert.Equal(t, "INV-1000000", InvoiceNumberFormat(1000000))
}

func TestBillingPeriodValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, BillingPeriod{Start: start, End: end, Due: due}.Validate())

	assert.ErrorIs(t, BillingPeriod{Start: end, End: start, Due: due}.Validate(), ErrInvalidPeriod)
	assert.ErrorIs(t, BillingPeriod{Start: start, End: start, Due: due}.Validate(), ErrInvalidPeriod)
	assert.ErrorIs(t, BillingPeriod{End: end, Due: due}.Validate(), ErrInvalidPeriod)

	// A due date inside the period is advisory, not an error.
	early := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, BillingPeriod{Start: start, End: end, Due: early}.Validate())
}

func TestMonthOf(t *testing.T) {
	period := MonthOf(time.Date(2024, 2, 14, 10, 30, 0, 0, time.UTC), 7)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), period.End)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), period.Due)
	assert.Equal(t, 2024, period.Year())
	assert.Equal(t, 2, period.Month())
}

func TestLateFeeZeroAtOrBeforeDueDate(t *testing.T) {
	due := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	rate := mustMoney(t, "50", "MVR")

	assert.True(t, LateFee(due, due, rate).IsZero())
	assert.True(t, LateFee(due, due.AddDate(0, 0, -3), rate).IsZero())
	// Same calendar day, later wall time.
	assert.True(t, LateFee(due, due.Add(23*time.Hour), rate).IsZero())
}

func TestLateFeeWholeDays(t *testing.T) {
	due := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	rate := mustMoney(t, "50", "MVR")

	fee := LateFee(due, due.AddDate(0, 0, 3), rate)
	assert.Equal(t, "150.00 MVR", fee.String())
	assert.Equal(t, "MVR", fee.Currency)
}

func TestLateFeeMonotone(t *testing.T) {
	due := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	rate := mustMoney(t, "12.5", "MVR")

	prev := decimal.Zero
	for day := -2; day <= 40; day++ {
		fee := LateFee(due, due.AddDate(0, 0, day), rate)
		require.False(t, fee.IsNegative())
		require.True(t, fee.Amount.GreaterThanOrEqual(prev), "fee decreased at day %d", day)
		prev = fee.Amount
	}
}

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), DaysOverdue(due, due))
	assert.Equal(t, int64(0), DaysOverdue(due, due.AddDate(0, 0, -1)))
	assert.Equal(t, int64(1), DaysOverdue(due, due.AddDate(0, 0, 1)))
	assert.Equal(t, int64(3), DaysOverdue(due, time.Date(2024, 2, 10, 23, 59, 0, 0, time.UTC)))
}

func TestPaymentDetailsRoundTrip(t *testing.T) {
	ref := "TXN-889"
	paidAt := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	raw, err := PaymentDetails{
		PaymentType:     1,
		PaymentMode:     2,
		ReferenceNumber: &ref,
		PaymentDate:     &paidAt,
	}.ToJSON()
	require.NoError(t, err)

	decoded, err := PaymentDetailsFromJSON(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, int64(1), decoded.PaymentType)
	assert.Equal(t, int64(2), decoded.PaymentMode)
	assert.Equal(t, "TXN-889", *decoded.ReferenceNumber)
	assert.True(t, decoded.PaymentDate.Equal(paidAt))

	empty, err := PaymentDetailsFromJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func mustMoney(t *testing.T, amount, currency string) money.Money {
	t.Helper()
	m, err := money.FromString(amount, currency)
	require.NoError(t, err)
	return m
}
