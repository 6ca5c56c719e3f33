package wei

import (
	"math"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestToDisplay(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		decimals int
		expected float64
		ok       bool
	}{
		{name: "zero", base: "0", decimals: 18, expected: 0, ok: true},
		{name: "one whole token", base: "1000000000000000000", decimals: 18, expected: 1, ok: true},
		{name: "one and a half", base: "1500000000000000000", decimals: 18, expected: 1.5, ok: true},
		{name: "sub-unit amount", base: "123456000000000000", decimals: 18, expected: 0.123456, ok: true},
		{name: "fraction truncated at six digits", base: "1123456789000000000", decimals: 18, expected: 1.123456, ok: true},
		{name: "truncation never rounds up", base: "1999999999999999999", decimals: 18, expected: 1.999999, ok: true},
		{name: "zero decimals", base: "42", decimals: 0, expected: 42, ok: true},
		{name: "six decimals", base: "2500000", decimals: 6, expected: 2.5, ok: true},
		{name: "large amount", base: "123456789000000000000000000", decimals: 18, expected: 123456789, ok: true},
		{name: "whitespace tolerated", base: " 1000000000000000000 ", decimals: 18, expected: 1, ok: true},
		{name: "negative rejected", base: "-1", decimals: 18, ok: false},
		{name: "empty rejected", base: "", decimals: 18, ok: false},
		{name: "non-numeric rejected", base: "12abc", decimals: 18, ok: false},
		{name: "decimal point rejected", base: "1.5", decimals: 18, ok: false},
		{name: "negative decimals rejected", base: "1", decimals: -1, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDisplay(tt.base, tt.decimals)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestToDisplayProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("zero converts to zero at any precision", prop.ForAll(
		func(decimals int) bool {
			v, ok := ToDisplay("0", decimals)
			return ok && v == 0
		},
		gen.IntRange(0, 30),
	))

	properties.Property("conversion is deterministic", prop.ForAll(
		func(n uint64, decimals int) bool {
			s := new(big.Int).SetUint64(n).String()
			a, okA := ToDisplay(s, decimals)
			b, okB := ToDisplay(s, decimals)
			return okA == okB && a == b
		},
		gen.UInt64(),
		gen.IntRange(0, 24),
	))

	properties.Property("result is non-negative and never exceeds the untruncated value", prop.ForAll(
		func(n uint64, decimals int) bool {
			s := new(big.Int).SetUint64(n).String()
			v, ok := ToDisplay(s, decimals)
			if !ok {
				return false
			}
			exact := float64(n) / math.Pow10(decimals)
			// Truncation only ever lowers the value; allow relative float slack.
			return v >= 0 && v <= exact*(1+1e-12)+1e-9
		},
		gen.UInt64(),
		gen.IntRange(0, 18),
	))

	properties.TestingRun(t)
}
