package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/migration"
	"github.com/smallbiznis/rentora/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDirectory(t *testing.T) (directorydomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(migration.Models()...))
	dbConn.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_currencies_code ON currencies(code)")
	require.NoError(t, seed.EnsureCurrencies(dbConn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{DB: dbConn, Log: zap.NewNop()})
	return svc, dbConn, node
}

func seedLease(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, status directorydomain.LeaseStatus, start time.Time, end *time.Time, rent string) (snowflake.ID, snowflake.ID) {
	t.Helper()

	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	propertyID := node.Generate()
	unitID := node.Generate()
	tenantID := node.Generate()

	require.NoError(t, dbConn.Exec(
		`INSERT INTO properties (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		propertyID, "Villa Complex", "Male", now, now,
	).Error)
	require.NoError(t, dbConn.Exec(
		`INSERT INTO rental_units (id, property_id, unit_number, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		unitID, propertyID, "B-02", "VACANT", now, now,
	).Error)
	require.NoError(t, dbConn.Exec(
		`INSERT INTO tenants (id, first_name, last_name, phone, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tenantID, "Hassan", "Rasheed", "", "hassan@example.com", now, now,
	).Error)
	require.NoError(t, dbConn.Exec(
		`INSERT INTO leases (id, rental_unit_id, tenant_id, status, start_date, end_date, rent_amount, deposit_amount, currency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 'MVR', ?, ?)`,
		node.Generate(), unitID, tenantID, status, start, end, rent, now, now,
	).Error)

	return unitID, tenantID
}

func TestListOccupiedUnitsFiltersByLeaseWindow(t *testing.T) {
	svc, dbConn, node := newTestDirectory(t)

	leaseStart := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	endedAt := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	activeUnit, _ := seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, leaseStart, nil, "5000")
	seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, leaseStart, &endedAt, "4000")
	seedLease(t, dbConn, node, directorydomain.LeaseStatusTerminated, leaseStart, nil, "3000")

	units, err := svc.ListOccupiedUnits(context.Background(), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, activeUnit, units[0].UnitID)
	assert.Equal(t, "5000.00 MVR", units[0].Rent.Round().String())
}

func TestListOccupiedUnitsOrderedByUnitID(t *testing.T) {
	svc, dbConn, node := newTestDirectory(t)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	first, _ := seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, start, nil, "5000")
	second, _ := seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, start, nil, "6000")

	units, err := svc.ListOccupiedUnits(context.Background(), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, first, units[0].UnitID)
	assert.Equal(t, second, units[1].UnitID)
}

func TestTenantSnapshot(t *testing.T) {
	svc, dbConn, node := newTestDirectory(t)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, tenantID := seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, start, nil, "5000")

	snapshot, err := svc.TenantSnapshot(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "Hassan Rasheed", snapshot.FullName())
	assert.Equal(t, "hassan@example.com", snapshot.Email)

	_, err = svc.TenantSnapshot(context.Background(), node.Generate())
	assert.ErrorIs(t, err, directorydomain.ErrMissingTenantSnapshot)
}

func TestTenantSnapshotRejectsNamelessTenant(t *testing.T) {
	svc, dbConn, node := newTestDirectory(t)

	tenantID := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, dbConn.Exec(
		`INSERT INTO tenants (id, first_name, last_name, phone, email, created_at, updated_at) VALUES (?, '', '', '', '', ?, ?)`,
		tenantID, now, now,
	).Error)

	_, err := svc.TenantSnapshot(context.Background(), tenantID)
	assert.ErrorIs(t, err, directorydomain.ErrMissingTenantSnapshot)
}

func TestResolveCurrency(t *testing.T) {
	svc, _, _ := newTestDirectory(t)

	currency, err := svc.ResolveCurrency(context.Background(), "mvr")
	require.NoError(t, err)
	assert.Equal(t, "MVR", currency.Code)
	assert.Equal(t, 2, currency.MinorUnits)

	_, err = svc.ResolveCurrency(context.Background(), "XXX")
	assert.ErrorIs(t, err, directorydomain.ErrMissingCurrency)

	_, err = svc.ResolveCurrency(context.Background(), "")
	assert.ErrorIs(t, err, directorydomain.ErrMissingCurrency)
}

func TestReconcileUnitStatuses(t *testing.T) {
	svc, dbConn, node := newTestDirectory(t)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	occupiedUnit, _ := seedLease(t, dbConn, node, directorydomain.LeaseStatusActive, start, nil, "5000")
	vacantUnit, _ := seedLease(t, dbConn, node, directorydomain.LeaseStatusTerminated, start, nil, "4000")

	// Both rows were seeded VACANT; one of them has an active lease.
	changed, err := svc.ReconcileUnitStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	var status string
	require.NoError(t, dbConn.Raw(`SELECT status FROM rental_units WHERE id = ?`, occupiedUnit).Scan(&status).Error)
	assert.Equal(t, "OCCUPIED", status)
	require.NoError(t, dbConn.Raw(`SELECT status FROM rental_units WHERE id = ?`, vacantUnit).Scan(&status).Error)
	assert.Equal(t, "VACANT", status)

	// Second pass changes nothing.
	changed, err = svc.ReconcileUnitStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}
