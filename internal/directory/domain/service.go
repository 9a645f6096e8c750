package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/pkg/money"
)

var (
	ErrDirectoryUnavailable  = errors.New("directory_unavailable")
	ErrMissingTenantSnapshot = errors.New("missing_tenant_snapshot")
	ErrMissingCurrency       = errors.New("missing_currency")
)

// OccupiedUnit is a unit under an active tenancy, with its agreed amounts
// copied out of the covering lease.
type OccupiedUnit struct {
	UnitID     snowflake.ID
	PropertyID snowflake.ID
	TenantID   snowflake.ID
	Rent       money.Money
	Deposit    money.Money
}

// TenantSnapshot is the minimal tenant identity needed on a payment record.
type TenantSnapshot struct {
	TenantID  snowflake.ID
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// FullName renders the payer-facing name.
func (t TenantSnapshot) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Service is the billing engine's read view of the directory.
type Service interface {
	// ListOccupiedUnits returns every unit whose active lease covers asOf,
	// ordered by ascending unit ID. Occupancy is derived from lease dates;
	// the stored RentalUnit.Status flag is never consulted, since it can
	// drift from tenancy truth. A directory read failure surfaces as
	// ErrDirectoryUnavailable, never as an empty result.
	ListOccupiedUnits(ctx context.Context, asOf time.Time) ([]OccupiedUnit, error)

	// TenantSnapshot resolves the tenant's current name and contact.
	// Returns ErrMissingTenantSnapshot when the tenant is unknown or has
	// no usable name.
	TenantSnapshot(ctx context.Context, tenantID snowflake.ID) (TenantSnapshot, error)

	// ResolveCurrency looks up a currency by code. Unknown codes fail with
	// ErrMissingCurrency; amounts are never silently defaulted into a
	// currency.
	ResolveCurrency(ctx context.Context, code string) (Currency, error)

	// ReconcileUnitStatuses rewrites every unit's stored occupancy flag
	// from lease truth and reports how many rows changed. Idempotent.
	ReconcileUnitStatuses(ctx context.Context) (int64, error)
}
