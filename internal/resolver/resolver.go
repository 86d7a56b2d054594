// Package resolver computes display URIs for tokens from their active
// resource sequence. Resolution never fails on a miss: every query
// degrades to the configured fallback URI.
package resolver

import (
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/openregistry/multiasset/internal/catalog"
	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/pkg/types"
)

// CatalogSource is the catalog surface the resolver reads.
type CatalogSource interface {
	Get(id types.ResourceID) (*catalog.Resource, error)
	CustomData(id types.ResourceID, tag types.TagID) ([]byte, error)
}

// ActiveSource supplies a token's active resource sequence in
// acceptance order.
type ActiveSource interface {
	Active(id types.TokenID) []types.ResourceID
}

// Resolver resolves token URIs against a catalog and a ledger. Handles
// are explicit; there is no process-global catalog.
type Resolver struct {
	catalog  CatalogSource
	active   ActiveSource
	fallback string
}

// New creates a resolver with the given fallback URI, returned whenever
// no active resource satisfies a query.
func New(catalog CatalogSource, active ActiveSource, fallbackURI string) *Resolver {
	return &Resolver{catalog: catalog, active: active, fallback: fallbackURI}
}

// Fallback returns the configured fallback URI.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Resolve returns the composed URI of the token's first active resource,
// or the fallback URI when the token has none.
func (r *Resolver) Resolve(tokenID types.TokenID) (string, error) {
	return r.ResolveAt(tokenID, 0)
}

// ResolveAt returns the composed URI of the active resource at the given
// position. Positions past the end resolve to the fallback URI rather
// than failing.
func (r *Resolver) ResolveAt(tokenID types.TokenID, index int) (string, error) {
	active := r.active.Active(tokenID)
	if index < 0 || index >= len(active) {
		return r.fallback, nil
	}
	return r.compose(tokenID, active[index])
}

// ResolveByAttribute returns the composed URI of the first active
// resource whose custom data under tagID matches want byte-for-byte,
// scanning in acceptance order. No match resolves to the fallback URI.
func (r *Resolver) ResolveByAttribute(tokenID types.TokenID, tagID types.TagID, want []byte) (string, error) {
	wantSum := blake3.Sum256(want)

	for _, resourceID := range r.active.Active(tokenID) {
		data, err := r.catalog.CustomData(resourceID, tagID)
		if err != nil {
			return "", fmt.Errorf("custom data for resource %s: %w", resourceID, err)
		}
		if blake3.Sum256(data) == wantSum {
			return r.compose(tokenID, resourceID)
		}
	}

	log.Resolver.Debug().
		Stringer("token", tokenID).
		Stringer("tag", tagID).
		Msg("no attribute match, using fallback")
	return r.fallback, nil
}

// compose builds the final URI for a resource. Token-enumerated
// resources append the decimal token id, but only to a non-empty base
// URI.
func (r *Resolver) compose(tokenID types.TokenID, resourceID types.ResourceID) (string, error) {
	res, err := r.catalog.Get(resourceID)
	if err != nil {
		return "", fmt.Errorf("resolve resource %s: %w", resourceID, err)
	}
	if res.TokenEnumerated && res.URI != "" {
		return res.URI + tokenID.String(), nil
	}
	return res.URI, nil
}
