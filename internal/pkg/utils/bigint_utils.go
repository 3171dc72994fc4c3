package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt converts a raw integer amount into a decimal string using the token's decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
// Trailing zeros of the fraction are trimmed; a nil amount formats as "0".
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	abs := new(big.Int).Abs(amount)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	var b strings.Builder
	if amount.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(whole.String())

	if frac.Sign() != 0 {
		fracStr := frac.String()
		// left-pad the fraction to the full number of decimals
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
		fracStr = strings.TrimRight(fracStr, "0")
		b.WriteByte('.')
		b.WriteString(fracStr)
	}
	return b.String()
}

// ParseBigInt parses a base-10 integer amount.
func ParseBigInt(raw string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimSpace(raw), 10)
}
