package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Minor-unit exponents for supported ISO 4217 currencies. Everything not
// listed with a special exponent uses two decimal places.
var currencyExponents = map[string]int32{
	"USD": 2, "EUR": 2, "GBP": 2, "CHF": 2, "AUD": 2, "CAD": 2,
	"SEK": 2, "NOK": 2, "NZD": 2, "SGD": 2, "HKD": 2, "MXN": 2,
	"INR": 2, "BRL": 2, "ZAR": 2, "TRY": 2, "CNY": 2, "RUB": 2,
	"JPY": 0, "KRW": 0, "VND": 0,
	"BHD": 3, "KWD": 3, "OMR": 3, "TND": 3,
}

// Money is a fixed-point amount in a single ISO 4217 currency.
// All arithmetic stays in decimal space; rounding to the currency's
// minor unit is explicit via Truncate and Round.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney creates a Money value, validating the currency code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := currencyExponents[currency]; !ok {
		return Money{}, fmt.Errorf("%w: %s is not a supported ISO 4217 code", ErrInvalidCurrency, currency)
	}

	return Money{Amount: amount, Currency: currency}, nil
}

// ValidateCurrency checks a currency code without constructing a value.
func ValidateCurrency(currency string) error {
	_, err := NewMoney(decimal.Zero, currency)
	return err
}

// Exponent returns the number of minor-unit decimal places for the currency.
func (m Money) Exponent() int32 {
	return currencyExponents[m.Currency]
}

// MinorUnit returns one minor unit of the currency (0.01 for USD, 1 for JPY).
func (m Money) MinorUnit() decimal.Decimal {
	return decimal.New(1, -m.Exponent())
}

// Truncate rounds the amount toward zero to the currency's minor unit.
func (m Money) Truncate() Money {
	return Money{Amount: m.Amount.Truncate(m.Exponent()), Currency: m.Currency}
}

// Round rounds the amount half away from zero to the currency's minor unit.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.Round(m.Exponent()), Currency: m.Currency}
}

// Add returns m + o. The currencies must match.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub returns m - o. The currencies must match.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// WithinMinorUnit reports whether m and o differ by at most one minor unit.
// This is the rounding tolerance used by split reconciliation and the
// trip-wide zero-sum balance invariant.
func (m Money) WithinMinorUnit(o Money) bool {
	if m.Currency != o.Currency {
		return false
	}

	return m.Amount.Sub(o.Amount).Abs().LessThanOrEqual(m.MinorUnit())
}

// String formats the amount at the currency's minor-unit precision.
func (m Money) String() string {
	return m.Amount.StringFixed(m.Exponent()) + " " + m.Currency
}
