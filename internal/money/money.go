// Package money centralizes monetary rounding. Every amount in this system
// is stored rounded to two decimal places so floating-point drift cannot
// accumulate across many small operations.
package money

import "github.com/shopspring/decimal"

// CentTolerance is the comparison slack for amounts that have been rounded
// independently (half the smallest currency unit).
const CentTolerance = 0.005

// Round2 rounds an amount to two decimal places, half away from zero.
func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Equal reports whether two rounded amounts are the same within CentTolerance.
func Equal(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < CentTolerance
}

// NonNegative clamps an amount at zero after rounding.
func NonNegative(amount float64) float64 {
	r := Round2(amount)
	if r < 0 {
		return 0
	}
	return r
}
