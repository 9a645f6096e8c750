package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/pkg/db/pagination"
)

var (
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrInvalidDeletion   = errors.New("invalid_deletion")
	ErrInvalidPageToken  = errors.New("invalid_page_token")

	// ErrPartialGeneration marks a run where some units billed before a
	// later per-unit failure; the returned GenerationRun still carries
	// everything committed.
	ErrPartialGeneration = errors.New("partial_generation_failure")

	// Directory failures surface under the generator's contract too.
	ErrDirectoryUnavailable  = directorydomain.ErrDirectoryUnavailable
	ErrMissingTenantSnapshot = directorydomain.ErrMissingTenantSnapshot
	ErrMissingCurrency       = directorydomain.ErrMissingCurrency
)

// Canonical skip reasons; the UI surfaces these verbatim to the operator.
const (
	SkipReasonInvalidRent   = "invalid rent amount"
	SkipReasonAlreadyExists = "invoice already exists for period"
)

// SkippedUnit explains why a unit produced no invoice in a run.
type SkippedUnit struct {
	UnitID snowflake.ID `json:"unit_id"`
	Reason string       `json:"reason"`
}

// GenerationRun reports one generation call's outcome. It is not
// persisted; it exists to report created invoices and per-unit skips back
// to the caller.
type GenerationRun struct {
	Period          BillingPeriod `json:"period"`
	CreatedInvoices []RentInvoice `json:"created_invoices"`
	SkippedUnits    []SkippedUnit `json:"skipped_units"`
}

// ListInvoiceRequest filters the invoice listing.
type ListInvoiceRequest struct {
	Status       *InvoiceStatus
	RentalUnitID *snowflake.ID
	TenantID     *snowflake.ID
	DueFrom      *time.Time
	DueTo        *time.Time
	Page         pagination.Pagination
}

// ListInvoiceResponse is the invoice listing payload.
type ListInvoiceResponse struct {
	Invoices []RentInvoice       `json:"invoices"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// Service drives the recurring rent-invoice lifecycle: idempotent
// generation, explicit status transitions, and the daily overdue sweep.
type Service interface {
	// Generate creates one PENDING invoice per occupied unit for the
	// period. Calling it again with the same period is safe: every unit
	// already billed lands in SkippedUnits and nothing is created twice.
	Generate(ctx context.Context, period BillingPeriod) (GenerationRun, error)

	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (RentInvoice, error)

	MarkSent(ctx context.Context, id snowflake.ID) (RentInvoice, error)
	MarkPaid(ctx context.Context, id snowflake.ID, details *PaymentDetails) (RentInvoice, error)
	MarkOverdue(ctx context.Context, id snowflake.ID) (RentInvoice, error)
	Cancel(ctx context.Context, id snowflake.ID) (RentInvoice, error)

	// SweepOverdue moves every PENDING or SENT invoice whose due date has
	// passed to OVERDUE. Best-effort per invoice: one failure never blocks
	// the rest of the sweep.
	SweepOverdue(ctx context.Context, today time.Time) ([]RentInvoice, error)

	// Delete removes an invoice, permitted only while status is PENDING.
	Delete(ctx context.Context, id snowflake.ID) error
}
