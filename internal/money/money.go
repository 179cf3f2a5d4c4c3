// Package money provides decimal helpers, the per-currency minor-unit table
// and the rounding policies used by the tax engine and the schema generator.
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// RoundingPolicy selects how half-way amounts are rounded.
type RoundingPolicy string

const (
	// RoundHalfAwayFromZero rounds 0.5 up for positive amounts and down for
	// negative amounts (symmetric, so credit lines mirror debit lines).
	RoundHalfAwayFromZero RoundingPolicy = "half-away-from-zero"
	// RoundHalfEven is banker's rounding.
	RoundHalfEven RoundingPolicy = "half-even"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = RoundHalfAwayFromZero

// minorUnits maps ISO-4217 currency codes to their minor-unit digit count.
// Currencies not listed default to 2.
var minorUnits = map[string]int32{
	"EUR": 2, "USD": 2, "GBP": 2, "CHF": 2, "SEK": 2, "NOK": 2, "DKK": 2,
	"PLN": 2, "CZK": 2, "HUF": 2, "RON": 2, "BGN": 2, "AUD": 2, "CAD": 2,
	"CNY": 2, "HKD": 2, "SGD": 2, "INR": 2, "BRL": 2, "MXN": 2, "ZAR": 2,
	"TRY": 2, "ILS": 2, "NZD": 2, "RUB": 2, "SAR": 2, "AED": 2, "THB": 2,
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "ISK": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "OMR": 3, "TND": 3,
}

// MinorUnits returns the minor-unit digit count for an ISO-4217 code and
// whether the currency is known.
func MinorUnits(currency string) (int32, bool) {
	n, ok := minorUnits[currency]
	if !ok {
		return 2, false
	}
	return n, true
}

// KnownCurrency reports whether the code appears in the minor-unit table.
func KnownCurrency(currency string) bool {
	_, ok := minorUnits[currency]
	return ok
}

// Round rounds d to places decimals according to the policy.
func Round(d decimal.Decimal, places int32, policy RoundingPolicy) decimal.Decimal {
	if policy == RoundHalfEven {
		return d.RoundBank(places)
	}
	return d.Round(places)
}

// FromString parses a decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// WithinTolerance reports whether a and b differ by at most one minor
// currency unit at the given precision.
func WithinTolerance(a, b decimal.Decimal, places int32) bool {
	tolerance := decimal.New(1, -places)
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
