package service

import (
	"dealership/internal/apperror"

	"github.com/shopspring/decimal"
)

// parseAmount parses a monetary request field. Amounts travel as decimal
// strings and must not carry more than two fractional digits; rounding them
// silently would drift accumulated report sums.
func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validationf("invalid %s: %q is not a decimal number", field, raw)
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, apperror.Validationf("%s must have at most two decimal places", field)
	}
	return amount, nil
}

// parsePositiveAmount parses an amount that must be strictly greater than zero.
func parsePositiveAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := parseAmount(raw, field)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.Validationf("%s must be greater than 0", field)
	}
	return amount, nil
}

// parseNonNegativeAmount parses an amount that may be zero but not negative.
func parseNonNegativeAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := parseAmount(raw, field)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.Validationf("%s must not be negative", field)
	}
	return amount, nil
}
