// Package domain defines the payment ledger written when rent is collected.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	"gorm.io/gorm"
)

// PaymentLedgerEntry records one collected rent payment. Entries are
// immutable once written; there is no update path. The unique index on
// InvoiceID guarantees at most one entry per invoice even if a payment
// is replayed.
type PaymentLedgerEntry struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	InvoiceID     snowflake.ID `gorm:"not null;uniqueIndex:ux_payment_ledger_invoice"`
	InvoiceNumber string       `gorm:"type:text;not null"`

	RentalUnitID snowflake.ID `gorm:"not null;index"`
	PropertyID   snowflake.ID `gorm:"not null;index"`
	TenantID     snowflake.ID `gorm:"not null;index"`

	Amount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency string          `gorm:"type:text;not null"`

	PaymentType     *int64  `gorm:""`
	PaymentMode     *int64  `gorm:""`
	ReferenceNumber *string `gorm:"type:text"`

	PaidAt       time.Time `gorm:"not null;index"`
	PayerName    string    `gorm:"type:text;not null"`
	PayerContact string    `gorm:"type:text"`
	Remarks      string    `gorm:"type:text"`
	CreatedBy    string    `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PaymentLedgerEntry) TableName() string { return "payment_ledger_entries" }

// Recorder writes payment ledger entries. Record runs on the caller's
// transaction so the invoice status change and the ledger row commit or
// roll back together.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, invoice invoicedomain.RentInvoice, details *invoicedomain.PaymentDetails, createdBy string) error

	// ListByUnit returns a unit's payment history, newest first.
	ListByUnit(ctx context.Context, unitID snowflake.ID) ([]PaymentLedgerEntry, error)
}
