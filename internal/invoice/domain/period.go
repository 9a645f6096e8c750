package domain

import "time"

// BillingPeriod is the date range an invoice covers plus its due date.
// Dates are calendar dates; callers normalize away time-of-day.
type BillingPeriod struct {
	Start time.Time `json:"period_start"`
	End   time.Time `json:"period_end"`
	Due   time.Time `json:"due_date"`
}

// Validate enforces Start < End. A due date before the period end is
// deliberately allowed: the source treats it as advisory, surfaced as a
// UI warning only.
func (p BillingPeriod) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if !truncateDay(p.Start).Before(truncateDay(p.End)) {
		return ErrInvalidPeriod
	}
	return nil
}

// Year and Month identify the billed month for idempotency. The billed
// month is the one the period starts in.
func (p BillingPeriod) Year() int { return p.Start.Year() }

func (p BillingPeriod) Month() int { return int(p.Start.Month()) }

// MonthOf builds the billing period for the calendar month containing t,
// with the due date dueDays after the period end.
func MonthOf(t time.Time, dueDays int) BillingPeriod {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return BillingPeriod{
		Start: start,
		End:   end,
		Due:   end.AddDate(0, 0, dueDays),
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
