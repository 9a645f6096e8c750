// Package migration creates the schema on startup so the engine is usable
// out of the box for local and self-hosted environments.
package migration

import (
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/rentora/internal/ledger/domain"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"gorm.io/gorm"
)

// Models lists every persisted model, directory tables included; the
// billing engine owns the whole schema in single-binary deployments.
func Models() []any {
	return []any{
		&directorydomain.Property{},
		&directorydomain.RentalUnit{},
		&directorydomain.Tenant{},
		&directorydomain.Lease{},
		&directorydomain.Currency{},
		&invoicedomain.RentInvoice{},
		&invoicedomain.Counter{},
		&ledgerdomain.PaymentLedgerEntry{},
		&settingsdomain.RentSettings{},
	}
}

// RunMigrations applies the schema through gorm's migrator, which keeps
// the same DDL working across postgres, mysql, and the sqlite test driver.
func RunMigrations(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}
