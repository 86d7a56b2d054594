// Package types defines core primitive types for the multiasset registry.
package types

import "strconv"

// TokenID identifies a token in the ownership registry.
type TokenID uint64

// ResourceID identifies a resource in the catalog.
// The zero value is reserved and never assigned to a registered resource;
// it doubles as the "no overwrite target" and batch-rejection sentinel.
type ResourceID uint64

// TagID identifies a custom data tag attached to a resource.
type TagID uint64

// String returns the decimal representation of the token id.
func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// String returns the decimal representation of the resource id.
func (r ResourceID) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// IsZero returns true for the reserved zero resource id.
func (r ResourceID) IsZero() bool {
	return r == 0
}

// String returns the decimal representation of the tag id.
func (t TagID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
