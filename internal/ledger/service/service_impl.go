package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/rentora/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Directory directorydomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	directory directorydomain.Service
}

func NewService(p Params) ledgerdomain.Recorder {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ledger.service"),
		genID:     p.GenID,
		directory: p.Directory,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, invoice invoicedomain.RentInvoice, details *invoicedomain.PaymentDetails, createdBy string) error {
	snapshot, err := s.directory.TenantSnapshot(ctx, invoice.TenantID)
	if err != nil {
		return err
	}
	if _, err := s.directory.ResolveCurrency(ctx, invoice.Currency); err != nil {
		return err
	}

	paidAt := time.Now().UTC()
	if invoice.PaidAt != nil {
		paidAt = invoice.PaidAt.UTC()
	}

	remarks := fmt.Sprintf("Payment for invoice %s", invoice.InvoiceNumber)
	var paymentType, paymentMode *int64
	var referenceNumber *string
	if details != nil {
		paymentType = &details.PaymentType
		paymentMode = &details.PaymentMode
		referenceNumber = details.ReferenceNumber
		if details.Notes != nil && *details.Notes != "" {
			remarks = *details.Notes
		}
	}

	contact := snapshot.Phone
	if contact == "" {
		contact = snapshot.Email
	}

	result := tx.WithContext(ctx).Exec(
		`INSERT INTO payment_ledger_entries (
			id, invoice_id, invoice_number, rental_unit_id, property_id, tenant_id,
			amount, currency, payment_type, payment_mode, reference_number,
			paid_at, payer_name, payer_contact, remarks, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (invoice_id) DO NOTHING`,
		s.genID.Generate(),
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.RentalUnitID,
		invoice.PropertyID,
		invoice.TenantID,
		invoice.TotalAmount,
		invoice.Currency,
		paymentType,
		paymentMode,
		referenceNumber,
		paidAt,
		snapshot.FullName(),
		contact,
		remarks,
		createdBy,
		time.Now().UTC(),
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.log.Warn("payment ledger entry already exists",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("invoice_number", invoice.InvoiceNumber),
		)
		return nil
	}

	s.log.Info("payment recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("amount", invoice.TotalAmount.String()),
		zap.String("currency", invoice.Currency),
	)
	return nil
}

func (s *Service) ListByUnit(ctx context.Context, unitID snowflake.ID) ([]ledgerdomain.PaymentLedgerEntry, error) {
	var entries []ledgerdomain.PaymentLedgerEntry
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM payment_ledger_entries
		 WHERE rental_unit_id = ?
		 ORDER BY paid_at DESC, id DESC`,
		unitID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
