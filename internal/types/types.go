// Package types provides common type definitions for the staking dashboard service.
package types

import (
	"regexp"
	"strings"
)

// Address is a 20-byte account identifier in canonical form: a lowercase
// 0x-prefixed 40-hex-character string.
type Address string

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress trims surrounding whitespace and lowercases an address.
// It does not validate; callers check Valid separately.
func NormalizeAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether the address matches the canonical shape.
func (a Address) Valid() bool {
	return addressPattern.MatchString(string(a))
}

func (a Address) String() string {
	return string(a)
}

// ParseAddressList splits a comma-separated address list, trims whitespace,
// drops empty entries and lowercases the rest. Entries are not deduplicated;
// result order matches input order.
func ParseAddressList(raw string) []Address {
	parts := strings.Split(raw, ",")
	addrs := make([]Address, 0, len(parts))
	for _, p := range parts {
		a := NormalizeAddress(p)
		if a == "" {
			continue
		}
		addrs = append(addrs, a)
	}
	return addrs
}

// ValidateAddresses enforces the batch contract: an empty list or any entry
// failing the shape check rejects the whole request. No partial acceptance.
func ValidateAddresses(addrs []Address) error {
	if len(addrs) == 0 {
		return &ServiceError{Code: ErrMissingAddresses, Message: "Missing addresses"}
	}
	for _, a := range addrs {
		if !a.Valid() {
			return &ServiceError{
				Code:    ErrInvalidAddress,
				Message: "Invalid address",
				Details: map[string]interface{}{"address": a.String()},
			}
		}
	}
	return nil
}

// Service error codes shared between services and the API layer.
const (
	ErrMissingAddresses = "MISSING_ADDRESSES"
	ErrInvalidAddress   = "INVALID_ADDRESS"
	ErrInvalidSince     = "INVALID_SINCE"
	ErrUpstream         = "UPSTREAM_ERROR"
	ErrTrackingActive   = "TRACKING_ACTIVE"
	ErrTrackingInactive = "TRACKING_INACTIVE"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
