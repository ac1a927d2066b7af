package domain

import "github.com/shopspring/decimal"

// ConvertCurrency converts an amount using a caller-supplied exchange rate.
// The rate is provided by configuration or an external feed, never computed
// here. Result is rounded half-up to cents.
func ConvertCurrency(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidRate
	}

	return money(amount.Mul(rate)), nil
}
