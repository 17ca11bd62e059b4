// Package advance computes the deposit a booking requires before a vendor
// confirms it.
package advance

import (
	"github.com/shopspring/decimal"

	"planify/internal/status"
)

var hundred = decimal.NewFromInt(100)

// Compute returns percentage% of total, rounded to 2 decimal places with
// round-half-away-from-zero. A non-positive percentage falls back to
// fallbackPercentage (the configured platform default); totals below zero
// and percentages outside [0,100] are rejected with status.ErrInvalidInput.
//
// Pure function: no side effects, no external calls.
func Compute(total, percentage, fallbackPercentage decimal.Decimal) (decimal.Decimal, error) {
	if total.IsNegative() {
		return decimal.Zero, status.ErrInvalidInput
	}
	if percentage.LessThanOrEqual(decimal.Zero) {
		percentage = fallbackPercentage
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return decimal.Zero, status.ErrInvalidInput
	}

	return total.Mul(percentage).Div(hundred).Round(2), nil
}
