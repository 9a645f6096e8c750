package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/actorcontext"
	"github.com/smallbiznis/rentora/internal/invoice/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatchSize = 200

func (s *Service) MarkSent(ctx context.Context, id snowflake.ID) (domain.RentInvoice, error) {
	return s.simpleTransition(ctx, id, domain.InvoiceStatusSent)
}

func (s *Service) MarkOverdue(ctx context.Context, id snowflake.ID) (domain.RentInvoice, error) {
	return s.simpleTransition(ctx, id, domain.InvoiceStatusOverdue)
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) (domain.RentInvoice, error) {
	return s.simpleTransition(ctx, id, domain.InvoiceStatusCancelled)
}

// simpleTransition moves an invoice to a new status with no side writes.
// The guarded UPDATE re-checks the loaded status, so two racing callers
// cannot both apply a move from the same state.
func (s *Service) simpleTransition(ctx context.Context, id snowflake.ID, to domain.InvoiceStatus) (domain.RentInvoice, error) {
	var out domain.RentInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := findInvoiceTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(invoice.Status, to) {
			return &domain.TransitionError{From: invoice.Status, To: to}
		}

		now := s.clock.Now()
		result := tx.WithContext(ctx).Exec(
			`UPDATE rent_invoices SET status = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			to, now, id, invoice.Status,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			current, err := findInvoiceTx(ctx, tx, id)
			if err != nil {
				return err
			}
			return &domain.TransitionError{From: current.Status, To: to}
		}

		invoice.Status = to
		invoice.UpdatedAt = now
		out = invoice
		return nil
	})
	if err != nil {
		return domain.RentInvoice{}, err
	}

	s.log.Info("invoice status changed",
		zap.String("invoice_number", out.InvoiceNumber),
		zap.String("status", string(out.Status)),
	)
	return out, nil
}

// MarkPaid moves the invoice to PAID and emits the payment ledger entry in
// the same transaction. A recorder failure rolls the status change back, so
// an invoice is never PAID without its ledger row. The stored late fee is
// left untouched; it is frozen at the moment of payment.
func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID, details *domain.PaymentDetails) (domain.RentInvoice, error) {
	var out domain.RentInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := findInvoiceTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(invoice.Status, domain.InvoiceStatusPaid) {
			return &domain.TransitionError{From: invoice.Status, To: domain.InvoiceStatusPaid}
		}

		paidAt := dateOf(s.clock.Now())
		if details != nil && details.PaymentDate != nil {
			paidAt = dateOf(*details.PaymentDate)
		}

		rawDetails := invoice.PaymentDetails
		if details != nil {
			rawDetails, err = details.ToJSON()
			if err != nil {
				return err
			}
		}

		now := s.clock.Now()
		result := tx.WithContext(ctx).Exec(
			`UPDATE rent_invoices
			 SET status = ?, paid_at = ?, payment_details = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			domain.InvoiceStatusPaid, paidAt, rawDetails, now, id, invoice.Status,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			current, err := findInvoiceTx(ctx, tx, id)
			if err != nil {
				return err
			}
			return &domain.TransitionError{From: current.Status, To: domain.InvoiceStatusPaid}
		}

		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &paidAt
		invoice.PaymentDetails = rawDetails
		invoice.UpdatedAt = now

		if err := s.recorder.Record(ctx, tx, invoice, details, actorcontext.Actor(ctx)); err != nil {
			return err
		}

		out = invoice
		return nil
	})
	if err != nil {
		return domain.RentInvoice{}, err
	}

	s.log.Info("invoice paid",
		zap.String("invoice_number", out.InvoiceNumber),
		zap.String("amount", out.TotalAmount.String()),
		zap.String("currency", out.Currency),
	)
	return out, nil
}

// SweepOverdue moves every PENDING or SENT invoice past its due date to
// OVERDUE. Each invoice gets its own transaction; failures are collected
// and the sweep keeps going. The sweep never touches the stored late fee.
func (s *Service) SweepOverdue(ctx context.Context, today time.Time) ([]domain.RentInvoice, error) {
	cutoff := dateOf(today)
	var (
		transitioned []domain.RentInvoice
		sweepErrs    []error
		lastID       snowflake.ID
	)

	for {
		var batch []domain.RentInvoice
		err := s.db.WithContext(ctx).Raw(
			`SELECT * FROM rent_invoices
			 WHERE status IN (?, ?) AND due_date < ? AND id > ?
			 ORDER BY id ASC
			 LIMIT ?`,
			domain.InvoiceStatusPending,
			domain.InvoiceStatusSent,
			cutoff,
			lastID,
			sweepBatchSize,
		).Scan(&batch).Error
		if err != nil {
			return transitioned, err
		}
		if len(batch) == 0 {
			break
		}

		for _, invoice := range batch {
			lastID = invoice.ID
			updated, err := s.simpleTransition(ctx, invoice.ID, domain.InvoiceStatusOverdue)
			if err != nil {
				// A concurrent payment or cancellation losing the race
				// here is expected; anything else is reported.
				if errors.Is(err, domain.ErrInvalidTransition) {
					continue
				}
				s.log.Error("overdue sweep failed for invoice",
					zap.String("invoice_id", invoice.ID.String()),
					zap.Error(err),
				)
				sweepErrs = append(sweepErrs, err)
				continue
			}
			transitioned = append(transitioned, updated)
		}

		if len(batch) < sweepBatchSize {
			break
		}
	}

	s.metrics.AddSweepTransitions(len(transitioned))
	if len(transitioned) > 0 {
		s.log.Info("overdue sweep finished",
			zap.Time("cutoff", cutoff),
			zap.Int("transitioned", len(transitioned)),
		)
	}
	return transitioned, errors.Join(sweepErrs...)
}

// Delete removes an invoice, permitted only while it is still PENDING.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := findInvoiceTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceStatusPending {
			return domain.ErrInvalidDeletion
		}

		result := tx.WithContext(ctx).Exec(
			`DELETE FROM rent_invoices WHERE id = ? AND status = ?`,
			id, domain.InvoiceStatusPending,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrInvalidDeletion
		}

		s.log.Info("invoice deleted",
			zap.String("invoice_number", invoice.InvoiceNumber),
		)
		return nil
	})
}
