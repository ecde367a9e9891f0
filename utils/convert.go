package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a user-entered decimal amount into a smallest-unit
// integer string using the given number of decimals ("1.5" with 8 decimals
// becomes "150000000"). The conversion is exact; amounts with more fractional
// digits than the token supports are rejected rather than rounded.
func ParseUnits(amount string, decimals int) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if d.Sign() < 0 {
		return "", fmt.Errorf("amount %q is negative", amount)
	}

	if d.Exponent() < int32(-decimals) {
		return "", fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	return d.Shift(int32(decimals)).String(), nil
}

// FormatUnits is the inverse of ParseUnits: it renders a smallest-unit
// integer string as a human decimal string.
func FormatUnits(normalized string, decimals int) (string, error) {
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return "", fmt.Errorf("invalid normalized amount %q: %w", normalized, err)
	}

	if !d.IsInteger() {
		return "", fmt.Errorf("normalized amount %q is not an integer", normalized)
	}

	return d.Shift(int32(-decimals)).String(), nil
}

// IsPositiveAmount reports whether a normalized amount string is a valid
// integer greater than zero.
func IsPositiveAmount(normalized string) bool {
	n, ok := new(big.Int).SetString(normalized, 10)
	return ok && n.Sign() > 0
}
