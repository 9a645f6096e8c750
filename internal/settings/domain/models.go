// Package domain holds the rent generation settings consumed by the scheduler.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidGenerationDay = errors.New("invalid_generation_day")
	ErrInvalidDueDays       = errors.New("invalid_due_days")
)

// RentSettings is a single persisted row controlling automatic rent
// generation. Months shorter than RentGenerationDay generate on their
// last day.
type RentSettings struct {
	ID                int64     `gorm:"primaryKey" json:"-"`
	AutoGenerateRent  bool      `gorm:"not null;default:false" json:"auto_generate_rent"`
	RentGenerationDay int       `gorm:"not null;default:1" json:"rent_generation_day"`
	RentDueDays       int       `gorm:"not null;default:7" json:"rent_due_days"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RentSettings) TableName() string { return "rent_settings" }

// SettingsRowID pins the table to one row.
const SettingsRowID int64 = 1

// Defaults returns the settings used before any update is stored.
func Defaults() RentSettings {
	return RentSettings{
		ID:                SettingsRowID,
		AutoGenerateRent:  false,
		RentGenerationDay: 1,
		RentDueDays:       7,
	}
}

// Validate enforces the stored ranges.
func (s RentSettings) Validate() error {
	if s.RentGenerationDay < 1 || s.RentGenerationDay > 31 {
		return ErrInvalidGenerationDay
	}
	if s.RentDueDays < 0 {
		return ErrInvalidDueDays
	}
	return nil
}

// Service reads and writes the rent generation settings.
type Service interface {
	// Get returns the stored settings, or Defaults when none were saved yet.
	Get(ctx context.Context) (RentSettings, error)
	Update(ctx context.Context, settings RentSettings) (RentSettings, error)
}
