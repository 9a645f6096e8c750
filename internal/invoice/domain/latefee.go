package domain

import (
	"time"

	"github.com/smallbiznis/rentora/pkg/money"
)

// LateFee computes dailyRate × whole days overdue, rounded to the
// currency's minor units. Zero for any asOf on or before the due date.
// Pure; callers decide when the fee is applied. Once an invoice reaches a
// terminal state its stored fee is frozen and this must not be re-applied.
func LateFee(dueDate, asOf time.Time, dailyRate money.Money) money.Money {
	days := DaysOverdue(dueDate, asOf)
	if days <= 0 {
		return money.Zero(dailyRate.Currency)
	}
	return dailyRate.Mul(days).Round()
}

// DaysOverdue returns max(0, asOf − dueDate) in whole calendar days.
func DaysOverdue(dueDate, asOf time.Time) int64 {
	due := truncateDay(dueDate)
	at := truncateDay(asOf)
	if !at.After(due) {
		return 0
	}
	return int64(at.Sub(due) / (24 * time.Hour))
}
