package utils

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrInvalidAmount = errors.New("invalid amount")

// FormatUnitsTrim converts a token balance to a human string:
// - divides by 10^decimals
// - trims to maxFrac decimal places
// - removes trailing zeros
//
// Examples:
//
//	balance=150000000, decimals=8 -> "1.5"
//	balance=100000000, decimals=8 -> "1"
//	balance=1, decimals=8 -> "0.00000001"
func FormatUnitsTrim(amount *big.Int, decimals uint8, maxFrac int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	intPart := new(big.Int).Div(abs, base)
	fracPart := new(big.Int).Mod(abs, base)

	sign := ""
	if neg {
		sign = "-"
	}

	if fracPart.Sign() == 0 || maxFrac <= 0 {
		return sign + intPart.String()
	}

	// Left-pad fractional part to `decimals`
	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}

	if len(fracStr) > maxFrac {
		fracStr = fracStr[:maxFrac]
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		return sign + intPart.String()
	}

	return sign + intPart.String() + "." + fracStr
}

// ParseUnits is the inverse of FormatUnitsTrim: "1.5" with 8 decimals -> 150000000.
// Amounts with more fractional digits than decimals are rejected rather than rounded.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidAmount, "empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, errors.Wrapf(ErrInvalidAmount, "negative amount %q", amount)
	}
	s = strings.TrimPrefix(s, "+")

	intStr, fracStr, hasDot := strings.Cut(s, ".")
	if hasDot && fracStr == "" && intStr == "" {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", amount)
	}
	if len(fracStr) > int(decimals) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d fractional digits", amount, decimals)
	}
	if intStr == "" {
		intStr = "0"
	}
	fracStr += strings.Repeat("0", int(decimals)-len(fracStr))

	digits := intStr + fracStr
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, errors.Wrapf(ErrInvalidAmount, "%q", amount)
		}
	}

	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", amount)
	}
	return out, nil
}
