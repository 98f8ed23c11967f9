package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency codes are ISO 4217 codes or token symbols (EUR, USDC, SOL).
var currencyPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// ParseAmount parses a positive decimal amount such as "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return d, nil
}

// NormalizeCurrency upper-cases code and validates its shape.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// MinorUnits converts amount to integer minor units (cents) for card
// networks and payment processors.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func validCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}
