// Package domain contains the rent invoice aggregate and its lifecycle rules.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents rent invoice lifecycle states. A draft invoice
// is represented as PENDING; there is no separate draft state.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are legal from s.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

var transitions = map[InvoiceStatus]map[InvoiceStatus]bool{
	InvoiceStatusPending: {
		InvoiceStatusSent:      true,
		InvoiceStatusPaid:      true,
		InvoiceStatusOverdue:   true,
		InvoiceStatusCancelled: true,
	},
	InvoiceStatusSent: {
		InvoiceStatusPaid:      true,
		InvoiceStatusOverdue:   true,
		InvoiceStatusCancelled: true,
	},
	InvoiceStatusOverdue: {
		InvoiceStatusPaid:      true,
		InvoiceStatusCancelled: true,
	},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to InvoiceStatus) bool {
	return transitions[from][to]
}

// TransitionError reports an illegal state-machine move.
type TransitionError struct {
	From InvoiceStatus
	To   InvoiceStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// Is lets errors.Is match any TransitionError against ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// InvoiceNumberFormat renders a persisted sequence value as the
// downstream-compatible invoice number, e.g. INV-000042.
func InvoiceNumberFormat(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

// RentInvoice is the central billing aggregate. It holds copies of the
// rent amount and the unit/tenant references as of generation time, so a
// later rent change never rewrites an issued invoice. TotalAmount and
// LateFee are owned by this aggregate; nothing else recomputes them.
type RentInvoice struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex:ux_rent_invoices_number"`

	RentalUnitID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_rent_invoices_unit_period,priority:1"`
	PropertyID   snowflake.ID `gorm:"not null;index"`
	TenantID     snowflake.ID `gorm:"not null;index"`

	PeriodYear  int       `gorm:"not null;uniqueIndex:ux_rent_invoices_unit_period,priority:2"`
	PeriodMonth int       `gorm:"not null;uniqueIndex:ux_rent_invoices_unit_period,priority:3"`
	PeriodStart time.Time `gorm:"not null"`
	PeriodEnd   time.Time `gorm:"not null"`

	InvoiceDate time.Time `gorm:"not null"`
	DueDate     time.Time `gorm:"not null;index"`

	RentAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	LateFee     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency    string          `gorm:"type:text;not null"`

	Status         InvoiceStatus  `gorm:"type:text;not null;default:'PENDING';index"`
	PaidAt         *time.Time     `gorm:""`
	Notes          *string        `gorm:"type:text"`
	PaymentDetails datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RentInvoice) TableName() string { return "rent_invoices" }

// Counter backs monotonically increasing sequences such as invoice numbers.
type Counter struct {
	Name      string    `gorm:"primaryKey;type:text"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "counters" }

// CounterInvoiceNumber is the sequence behind InvoiceNumberFormat.
const CounterInvoiceNumber = "invoice_number"

// PaymentDetails captures how a payment was taken. It is stored verbatim
// on the invoice as JSON; field access stays statically checked.
type PaymentDetails struct {
	PaymentType     int64      `json:"payment_type"`
	PaymentMode     int64      `json:"payment_mode"`
	ReferenceNumber *string    `json:"reference_number,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
}

// ToJSON marshals the details for storage.
func (p PaymentDetails) ToJSON() (datatypes.JSON, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// PaymentDetailsFromJSON reads stored details back; an empty column yields nil.
func PaymentDetailsFromJSON(raw datatypes.JSON) (*PaymentDetails, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var details PaymentDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, err
	}
	return &details, nil
}
