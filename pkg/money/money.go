// Package money provides a fixed-point amount paired with a currency code.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch = errors.New("currency_mismatch")
	ErrInvalidCurrency  = errors.New("invalid_currency")
)

// minorUnits maps ISO 4217 codes to their decimal exponent. Codes not
// listed default to two minor units.
var minorUnits = map[string]int32{
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
}

// Money is a fixed-point decimal amount in a single currency. Arithmetic
// between two different currencies is rejected, never converted.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New builds a Money value. The currency must be a 3-letter code.
func New(amount decimal.Decimal, currency string) (Money, error) {
	code, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: code}, nil
}

// FromString parses a decimal string amount.
func FromString(amount, currency string) (Money, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, err
	}
	return New(value, currency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	code, err := normalizeCurrency(currency)
	if err != nil {
		code = strings.ToUpper(strings.TrimSpace(currency))
	}
	return Money{Amount: decimal.Zero, Currency: code}
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Mul scales the amount by an integer factor.
func (m Money) Mul(factor int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(factor)), Currency: m.Currency}
}

// Round applies half-up rounding to the currency's minor units.
func (m Money) Round() Money {
	exp, ok := minorUnits[m.Currency]
	if !ok {
		exp = 2
	}
	return Money{Amount: m.Amount.Round(exp), Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// LessThan reports m < other for same-currency values.
func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, ErrCurrencyMismatch
	}
	return m.Amount.LessThan(other.Amount), nil
}

// Equal reports amount and currency equality.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the rounded amount followed by the currency code,
// e.g. "5000.00 MVR".
func (m Money) String() string {
	exp, ok := minorUnits[m.Currency]
	if !ok {
		exp = 2
	}
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(exp), m.Currency)
}

func normalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}
