package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) directorydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("directory.service"),
	}
}

type occupiedUnitRow struct {
	UnitID        snowflake.ID
	PropertyID    snowflake.ID
	TenantID      snowflake.ID
	RentAmount    decimal.Decimal
	DepositAmount decimal.Decimal
	Currency      string
}

func (s *Service) ListOccupiedUnits(ctx context.Context, asOf time.Time) ([]directorydomain.OccupiedUnit, error) {
	var rows []occupiedUnitRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT l.rental_unit_id AS unit_id, u.property_id, l.tenant_id,
		        l.rent_amount, l.deposit_amount, l.currency
		 FROM leases l
		 JOIN rental_units u ON u.id = l.rental_unit_id
		 WHERE l.status = ?
		   AND l.start_date <= ?
		   AND (l.end_date IS NULL OR l.end_date >= ?)
		 ORDER BY l.rental_unit_id ASC`,
		directorydomain.LeaseStatusActive,
		asOf,
		asOf,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", directorydomain.ErrDirectoryUnavailable, err)
	}

	units := make([]directorydomain.OccupiedUnit, 0, len(rows))
	for _, row := range rows {
		currency := strings.ToUpper(strings.TrimSpace(row.Currency))
		units = append(units, directorydomain.OccupiedUnit{
			UnitID:     row.UnitID,
			PropertyID: row.PropertyID,
			TenantID:   row.TenantID,
			Rent:       money.Money{Amount: row.RentAmount, Currency: currency},
			Deposit:    money.Money{Amount: row.DepositAmount, Currency: currency},
		})
	}
	return units, nil
}

func (s *Service) TenantSnapshot(ctx context.Context, tenantID snowflake.ID) (directorydomain.TenantSnapshot, error) {
	var tenant directorydomain.Tenant
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, first_name, last_name, phone, email
		 FROM tenants
		 WHERE id = ?`,
		tenantID,
	).Scan(&tenant).Error
	if err != nil {
		return directorydomain.TenantSnapshot{}, fmt.Errorf("%w: %v", directorydomain.ErrDirectoryUnavailable, err)
	}
	if tenant.ID == 0 {
		return directorydomain.TenantSnapshot{}, directorydomain.ErrMissingTenantSnapshot
	}
	if strings.TrimSpace(tenant.FirstName) == "" && strings.TrimSpace(tenant.LastName) == "" {
		return directorydomain.TenantSnapshot{}, directorydomain.ErrMissingTenantSnapshot
	}

	return directorydomain.TenantSnapshot{
		TenantID:  tenant.ID,
		FirstName: tenant.FirstName,
		LastName:  tenant.LastName,
		Phone:     tenant.Phone,
		Email:     tenant.Email,
	}, nil
}

func (s *Service) ResolveCurrency(ctx context.Context, code string) (directorydomain.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return directorydomain.Currency{}, directorydomain.ErrMissingCurrency
	}

	var currency directorydomain.Currency
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, code, name, minor_units
		 FROM currencies
		 WHERE code = ?`,
		code,
	).Scan(&currency).Error
	if err != nil {
		return directorydomain.Currency{}, err
	}
	if currency.ID == 0 {
		return directorydomain.Currency{}, directorydomain.ErrMissingCurrency
	}
	return currency, nil
}

func (s *Service) ReconcileUnitStatuses(ctx context.Context) (int64, error) {
	var changed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		occupied := tx.WithContext(ctx).Exec(
			`UPDATE rental_units
			 SET status = ?, updated_at = ?
			 WHERE status <> ?
			   AND EXISTS (
			     SELECT 1 FROM leases l
			     WHERE l.rental_unit_id = rental_units.id
			       AND l.status = ?
			       AND l.start_date <= ?
			       AND (l.end_date IS NULL OR l.end_date >= ?)
			   )`,
			directorydomain.UnitStatusOccupied,
			now,
			directorydomain.UnitStatusOccupied,
			directorydomain.LeaseStatusActive,
			now,
			now,
		)
		if occupied.Error != nil {
			return occupied.Error
		}
		changed += occupied.RowsAffected

		vacant := tx.WithContext(ctx).Exec(
			`UPDATE rental_units
			 SET status = ?, updated_at = ?
			 WHERE status <> ?
			   AND NOT EXISTS (
			     SELECT 1 FROM leases l
			     WHERE l.rental_unit_id = rental_units.id
			       AND l.status = ?
			       AND l.start_date <= ?
			       AND (l.end_date IS NULL OR l.end_date >= ?)
			   )`,
			directorydomain.UnitStatusVacant,
			now,
			directorydomain.UnitStatusVacant,
			directorydomain.LeaseStatusActive,
			now,
			now,
		)
		if vacant.Error != nil {
			return vacant.Error
		}
		changed += vacant.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.log.Info("unit statuses reconciled", zap.Int64("changed", changed))
	}
	return changed, nil
}
