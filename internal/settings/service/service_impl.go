package service

import (
	"context"
	"time"

	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"github.com/smallbiznis/rentora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) settingsdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("settings.service"),
	}
}

func (s *Service) Get(ctx context.Context) (settingsdomain.RentSettings, error) {
	var settings settingsdomain.RentSettings
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM rent_settings WHERE id = ?`,
		settingsdomain.SettingsRowID,
	).Scan(&settings).Error
	if err != nil {
		return settingsdomain.RentSettings{}, err
	}
	if settings.ID == 0 {
		return settingsdomain.Defaults(), nil
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, settings settingsdomain.RentSettings) (settingsdomain.RentSettings, error) {
	settings.ID = settingsdomain.SettingsRowID
	if err := settings.Validate(); err != nil {
		return settingsdomain.RentSettings{}, err
	}

	now := time.Now().UTC()
	settings.UpdatedAt = now
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.WithContext(ctx).Exec(
			`INSERT INTO rent_settings (id, auto_generate_rent, rent_generation_day, rent_due_days, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			settings.ID,
			settings.AutoGenerateRent,
			settings.RentGenerationDay,
			settings.RentDueDays,
			now,
		)
		if insert.Error != nil && !db.IsDuplicateKeyErr(insert.Error) {
			return insert.Error
		}
		if insert.Error == nil && insert.RowsAffected == 1 {
			return nil
		}

		return tx.WithContext(ctx).Exec(
			`UPDATE rent_settings
			 SET auto_generate_rent = ?, rent_generation_day = ?, rent_due_days = ?, updated_at = ?
			 WHERE id = ?`,
			settings.AutoGenerateRent,
			settings.RentGenerationDay,
			settings.RentDueDays,
			now,
			settings.ID,
		).Error
	})
	if err != nil {
		return settingsdomain.RentSettings{}, err
	}

	s.log.Info("rent settings updated",
		zap.Bool("auto_generate_rent", settings.AutoGenerateRent),
		zap.Int("rent_generation_day", settings.RentGenerationDay),
		zap.Int("rent_due_days", settings.RentDueDays),
	)
	return settings, nil
}
