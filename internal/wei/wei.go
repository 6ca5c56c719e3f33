// Package wei converts integer base-unit token amounts into display values.
package wei

import (
	"math/big"
	"strings"
)

// Display values keep six fractional digits. Anything finer is truncated,
// never rounded: downstream consumers want readable numbers, not
// ledger-accurate sums.
const fracDigits = 1_000_000

var ten = big.NewInt(10)

// ToDisplay converts an arbitrary-precision base-unit amount into a display
// number at the given decimal precision. The result is
// floor(base/10^decimals) plus the fractional remainder truncated at the
// sixth digit. Returns false if the input does not parse as a non-negative
// integer.
func ToDisplay(baseUnits string, decimals int) (float64, bool) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(baseUnits), 10)
	if !ok || n.Sign() < 0 || decimals < 0 {
		return 0, false
	}

	div := new(big.Int).Exp(ten, big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(n, div, new(big.Int))

	frac := rem.Mul(rem, big.NewInt(fracDigits))
	frac.Quo(frac, div)

	w, _ := new(big.Float).SetInt(whole).Float64()
	return w + float64(frac.Int64())/fracDigits, true
}
