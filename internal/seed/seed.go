// Package seed inserts the baseline reference data the engine expects.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"gorm.io/gorm"
)

// defaultCurrencies covers the markets the application ships for plus the
// common zero- and three-decimal cases.
var defaultCurrencies = []directorydomain.Currency{
	{Code: "MVR", Name: "Maldivian Rufiyaa", MinorUnits: 2},
	{Code: "USD", Name: "US Dollar", MinorUnits: 2},
	{Code: "EUR", Name: "Euro", MinorUnits: 2},
	{Code: "INR", Name: "Indian Rupee", MinorUnits: 2},
	{Code: "JPY", Name: "Japanese Yen", MinorUnits: 0},
	{Code: "BHD", Name: "Bahraini Dinar", MinorUnits: 3},
}

// EnsureCurrencies inserts any missing default currencies. Existing rows
// are never modified, so operator edits to names or minor units survive
// restarts.
func EnsureCurrencies(conn *gorm.DB) error {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, currency := range defaultCurrencies {
		if err := conn.Exec(
			`INSERT INTO currencies (id, code, name, minor_units, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (code) DO NOTHING`,
			node.Generate(),
			currency.Code,
			currency.Name,
			currency.MinorUnits,
			now,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
