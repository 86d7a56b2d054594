// Package catalog implements the global resource catalog and the custom
// data store attached to it.
//
// Resources are registered once under a caller-chosen non-zero id and are
// immutable in id and URI afterwards. The tag list is a display-order
// index, not a referential-integrity constraint: custom data may exist
// for tags that never appear in the list.
package catalog

import (
	"encoding/binary"
	"errors"

	"github.com/openregistry/multiasset/pkg/types"
)

// Catalog errors.
var (
	ErrInvalidID       = errors.New("resource id zero is reserved")
	ErrAlreadyExists   = errors.New("resource already registered")
	ErrNotFound        = errors.New("resource not registered")
	ErrIndexOutOfRange = errors.New("tag index out of range")
	ErrNotAuthorized   = errors.New("caller is not the catalog issuer")
)

// Resource is a content/metadata variant that tokens can reference.
type Resource struct {
	ID  types.ResourceID `json:"id"`
	URI string           `json:"uri"`
	// TokenEnumerated resources compose their URI with the decimal
	// token id at resolution time.
	TokenEnumerated bool          `json:"token_enumerated"`
	Tags            []types.TagID `json:"tags,omitempty"`
}

// Authorizer gates catalog mutation to the designated issuer. The check
// lives outside the catalog so capability policy can evolve independently.
type Authorizer interface {
	CanManageCatalog(caller types.Address) bool
}

// Key layouts within the catalog's DB namespace.
var (
	prefixResource = []byte("r/") // r/<id BE8> -> Resource JSON
	prefixCustom   = []byte("c/") // c/<id BE8><tag BE8> -> raw bytes
	keyIndex       = []byte("ri") // JSON array of ids in registration order
)

// resourceKey builds the DB key for a resource record.
func resourceKey(id types.ResourceID) []byte {
	key := make([]byte, len(prefixResource)+8)
	copy(key, prefixResource)
	binary.BigEndian.PutUint64(key[len(prefixResource):], uint64(id))
	return key
}

// customKey builds the DB key for a custom data entry.
func customKey(id types.ResourceID, tag types.TagID) []byte {
	key := make([]byte, len(prefixCustom)+16)
	copy(key, prefixCustom)
	binary.BigEndian.PutUint64(key[len(prefixCustom):], uint64(id))
	binary.BigEndian.PutUint64(key[len(prefixCustom)+8:], uint64(tag))
	return key
}
