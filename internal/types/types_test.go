package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddressList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []Address
	}{
		{
			name:     "single address",
			raw:      "0x1234567890abcdef1234567890abcdef12345678",
			expected: []Address{"0x1234567890abcdef1234567890abcdef12345678"},
		},
		{
			name:     "uppercase is lowercased",
			raw:      "0x1234567890ABCDEF1234567890ABCDEF12345678",
			expected: []Address{"0x1234567890abcdef1234567890abcdef12345678"},
		},
		{
			name: "whitespace trimmed, empties dropped",
			raw:  " 0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa , ,0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb ",
			expected: []Address{
				"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
				"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			},
		},
		{
			name:     "empty input",
			raw:      "",
			expected: []Address{},
		},
		{
			name:     "only separators",
			raw:      ", ,,",
			expected: []Address{},
		},
		{
			name: "duplicates preserved",
			raw:  "0xcccccccccccccccccccccccccccccccccccccccc,0xcccccccccccccccccccccccccccccccccccccccc",
			expected: []Address{
				"0xcccccccccccccccccccccccccccccccccccccccc",
				"0xcccccccccccccccccccccccccccccccccccccccc",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAddressList(tt.raw))
		})
	}
}

func TestAddressValid(t *testing.T) {
	valid := []string{
		"0x1234567890abcdef1234567890abcdef12345678",
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0x0000000000000000000000000000000000000000",
	}
	for _, s := range valid {
		assert.True(t, Address(s).Valid(), s)
	}

	invalid := []string{
		"",
		"0x",
		"1234567890abcdef1234567890abcdef12345678",      // no prefix
		"0x1234567890abcdef1234567890abcdef1234567",     // 39 chars
		"0x1234567890abcdef1234567890abcdef123456789",   // 41 chars
		"0x1234567890ABCDEF1234567890abcdef12345678",    // uppercase not canonical
		"0xg234567890abcdef1234567890abcdef12345678",    // non-hex
		"0x 234567890abcdef1234567890abcdef12345678",    // embedded space
	}
	for _, s := range invalid {
		assert.False(t, Address(s).Valid(), s)
	}
}

func TestValidateAddresses(t *testing.T) {
	t.Run("empty list rejected", func(t *testing.T) {
		err := ValidateAddresses(nil)
		assert.Error(t, err)
		serr := err.(*ServiceError)
		assert.Equal(t, ErrMissingAddresses, serr.Code)
	})

	t.Run("all valid accepted", func(t *testing.T) {
		addrs := ParseAddressList("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa,0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		assert.NoError(t, ValidateAddresses(addrs))
	})

	t.Run("one invalid entry rejects the whole batch", func(t *testing.T) {
		addrs := ParseAddressList("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa,0xnope")
		err := ValidateAddresses(addrs)
		assert.Error(t, err)
		serr := err.(*ServiceError)
		assert.Equal(t, ErrInvalidAddress, serr.Code)
	})
}
