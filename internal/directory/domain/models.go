// Package domain contains persistence models for the property directory.
// The directory (properties, units, tenants, leases) is owned by the CRUD
// surfaces of the wider application; the billing engine only reads it,
// except for the explicit unit-status reconcile operation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// UnitStatus is the stored occupancy flag on a rental unit. It exists for
// directory UI listings and is known to drift from lease truth; billing
// never trusts it (see Resolver).
type UnitStatus string

const (
	UnitStatusOccupied UnitStatus = "OCCUPIED"
	UnitStatusVacant   UnitStatus = "VACANT"
)

// LeaseStatus represents tenancy lifecycle states.
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
	LeaseStatusExpired    LeaseStatus = "EXPIRED"
)

// Property represents a building or compound containing rental units.
type Property struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	Address   string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Property) TableName() string { return "properties" }

// RentalUnit represents a single lettable unit within a property.
type RentalUnit struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	PropertyID snowflake.ID `gorm:"not null;index"`
	UnitNumber string       `gorm:"type:text;not null"`
	Status     UnitStatus   `gorm:"type:text;not null;default:'VACANT'"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RentalUnit) TableName() string { return "rental_units" }

// Tenant represents a person renting a unit.
type Tenant struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	FirstName string       `gorm:"type:text;not null"`
	LastName  string       `gorm:"type:text;not null"`
	Phone     string       `gorm:"type:text"`
	Email     string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// Lease ties a tenant to a unit for a date range at an agreed rent.
type Lease struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	RentalUnitID  snowflake.ID    `gorm:"not null;index"`
	TenantID      snowflake.ID    `gorm:"not null;index"`
	Status        LeaseStatus     `gorm:"type:text;not null;default:'ACTIVE'"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       *time.Time      `gorm:""`
	RentAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Currency      string          `gorm:"type:text;not null"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Lease) TableName() string { return "leases" }

// Currency is a chart of supported currencies with their minor units.
type Currency struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Code       string       `gorm:"type:text;not null;uniqueIndex:ux_currencies_code"`
	Name       string       `gorm:"type:text;not null"`
	MinorUnits int          `gorm:"not null;default:2"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Currency) TableName() string { return "currencies" }
