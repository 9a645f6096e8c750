package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/invoice/domain"
	"github.com/smallbiznis/rentora/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errAlreadyBilled aborts a per-unit transaction so nothing written inside
// it survives; the caller reports the unit as skipped.
var errAlreadyBilled = errors.New("already_billed")

func (s *Service) Generate(ctx context.Context, period domain.BillingPeriod) (domain.GenerationRun, error) {
	run := domain.GenerationRun{Period: period}

	if err := period.Validate(); err != nil {
		s.metrics.IncGenerationRun("invalid_period")
		return run, err
	}

	// Occupancy is evaluated at the period end so a lease covering any
	// part of the closing month still bills for it.
	units, err := s.directory.ListOccupiedUnits(ctx, period.End)
	if err != nil {
		s.metrics.IncGenerationRun("directory_error")
		return run, err
	}

	run.CreatedInvoices = make([]domain.RentInvoice, 0, len(units))
	run.SkippedUnits = make([]domain.SkippedUnit, 0)

	var unitErrs []error
	for _, unit := range units {
		if !unit.Rent.IsPositive() {
			run.SkippedUnits = append(run.SkippedUnits, domain.SkippedUnit{
				UnitID: unit.UnitID,
				Reason: domain.SkipReasonInvalidRent,
			})
			s.metrics.IncUnitSkipped("invalid_rent")
			continue
		}

		invoice, err := s.generateForUnit(ctx, period, unit)
		switch {
		case errors.Is(err, errAlreadyBilled):
			run.SkippedUnits = append(run.SkippedUnits, domain.SkippedUnit{
				UnitID: unit.UnitID,
				Reason: domain.SkipReasonAlreadyExists,
			})
			s.metrics.IncUnitSkipped("already_exists")
		case err != nil:
			// Units billed before this point stay committed; the run
			// reports partial success alongside the failure.
			s.log.Error("invoice generation failed for unit",
				zap.String("unit_id", unit.UnitID.String()),
				zap.Error(err),
			)
			unitErrs = append(unitErrs, fmt.Errorf("unit %s: %w", unit.UnitID, err))
		default:
			run.CreatedInvoices = append(run.CreatedInvoices, invoice)
			s.metrics.IncInvoicesCreated()
		}
	}

	if len(unitErrs) > 0 {
		s.metrics.IncGenerationRun("partial_error")
		return run, fmt.Errorf("%w: %w", domain.ErrPartialGeneration, errors.Join(unitErrs...))
	}

	s.metrics.IncGenerationRun("ok")
	s.log.Info("generation run finished",
		zap.Int("year", period.Year()),
		zap.Int("month", period.Month()),
		zap.Int("created", len(run.CreatedInvoices)),
		zap.Int("skipped", len(run.SkippedUnits)),
	)
	return run, nil
}

// generateForUnit creates one invoice in its own transaction. The unique
// index on (rental_unit_id, period_year, period_month) is the arbiter
// under concurrent runs; losing the race rolls the whole transaction back,
// sequence increment included.
func (s *Service) generateForUnit(ctx context.Context, period domain.BillingPeriod, unit directorydomain.OccupiedUnit) (domain.RentInvoice, error) {
	var invoice domain.RentInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM rent_invoices
			 WHERE rental_unit_id = ? AND period_year = ? AND period_month = ?`,
			unit.UnitID, period.Year(), period.Month(),
		).Scan(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyBilled
		}

		seq, err := s.nextInvoiceSequence(ctx, tx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		rent := unit.Rent.Round()
		invoice = domain.RentInvoice{
			ID:            s.genID.Generate(),
			InvoiceNumber: domain.InvoiceNumberFormat(seq),
			RentalUnitID:  unit.UnitID,
			PropertyID:    unit.PropertyID,
			TenantID:      unit.TenantID,
			PeriodYear:    period.Year(),
			PeriodMonth:   period.Month(),
			PeriodStart:   dateOf(period.Start),
			PeriodEnd:     dateOf(period.End),
			InvoiceDate:   dateOf(now),
			DueDate:       dateOf(period.Due),
			RentAmount:    rent.Amount,
			LateFee:       decimal.Zero,
			TotalAmount:   rent.Amount,
			Currency:      rent.Currency,
			Status:        domain.InvoiceStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		result := tx.WithContext(ctx).Exec(
			`INSERT INTO rent_invoices (
				id, invoice_number, rental_unit_id, property_id, tenant_id,
				period_year, period_month, period_start, period_end,
				invoice_date, due_date,
				rent_amount, late_fee, total_amount, currency,
				status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (rental_unit_id, period_year, period_month) DO NOTHING`,
			invoice.ID,
			invoice.InvoiceNumber,
			invoice.RentalUnitID,
			invoice.PropertyID,
			invoice.TenantID,
			invoice.PeriodYear,
			invoice.PeriodMonth,
			invoice.PeriodStart,
			invoice.PeriodEnd,
			invoice.InvoiceDate,
			invoice.DueDate,
			invoice.RentAmount,
			invoice.LateFee,
			invoice.TotalAmount,
			invoice.Currency,
			invoice.Status,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyBilled
		}

		s.log.Info("invoice created",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("unit_id", unit.UnitID.String()),
			zap.String("amount", invoice.TotalAmount.String()),
			zap.String("currency", invoice.Currency),
		)
		return nil
	})
	if err != nil {
		// A unique violation only means "already billed" when the
		// (unit, period) row really exists; a collision on any other
		// index (invoice_number) must surface as a failure, not a skip.
		// Re-checked outside the rolled-back transaction.
		if db.IsDuplicateKeyErr(err) {
			billed, checkErr := s.unitBilled(ctx, unit.UnitID, period)
			if checkErr != nil {
				return domain.RentInvoice{}, errors.Join(err, checkErr)
			}
			if billed {
				return domain.RentInvoice{}, errAlreadyBilled
			}
		}
		return domain.RentInvoice{}, err
	}
	return invoice, nil
}

// unitBilled reports whether an invoice is already stored for the unit and
// period.
func (s *Service) unitBilled(ctx context.Context, unitID snowflake.ID, period domain.BillingPeriod) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM rent_invoices
		 WHERE rental_unit_id = ? AND period_year = ? AND period_month = ?`,
		unitID, period.Year(), period.Month(),
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// nextInvoiceSequence advances the persisted invoice number sequence. The
// UPDATE holds the counter row until commit, so concurrent generators get
// distinct values.
func (s *Service) nextInvoiceSequence(ctx context.Context, tx *gorm.DB) (int64, error) {
	now := s.clock.Now()
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO counters (name, value, updated_at) VALUES (?, 0, ?)
		 ON CONFLICT (name) DO NOTHING`,
		domain.CounterInvoiceNumber, now,
	).Error; err != nil && !db.IsDuplicateKeyErr(err) {
		return 0, err
	}

	if err := tx.WithContext(ctx).Exec(
		`UPDATE counters SET value = value + 1, updated_at = ? WHERE name = ?`,
		now, domain.CounterInvoiceNumber,
	).Error; err != nil {
		return 0, err
	}

	var seq int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT value FROM counters WHERE name = ?`,
		domain.CounterInvoiceNumber,
	).Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}
