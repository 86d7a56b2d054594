// Package approvals implements resource access control: per-token single
// delegates, per-owner blanket delegates, and the catalog issuer
// capability. Resource delegation is independent of transfer approval;
// an address may curate a token's resources without being able to move it.
package approvals

import (
	"errors"
	"sync"

	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/pkg/types"
)

// Approval errors.
var (
	ErrSelfApproval  = errors.New("owner cannot delegate to itself")
	ErrNotAuthorized = errors.New("caller lacks owner or delegate standing")
)

// OwnerSource supplies current token ownership.
type OwnerSource interface {
	OwnerOf(id types.TokenID) (types.Address, error)
}

// Registry tracks resource delegations and the catalog issuer.
//
// Lock order: ownership registry first, then this registry. Methods here
// resolve the owner before taking the local lock; the ownership hook
// (ClearDelegate) takes only the local lock.
type Registry struct {
	mu        sync.RWMutex
	owners    OwnerSource
	issuer    types.Address
	delegates map[types.TokenID]types.Address
	blanket   map[types.Address]map[types.Address]bool
}

// NewRegistry creates an approvals registry bound to an owner source.
// The issuer is the sole address allowed to manage the catalog.
func NewRegistry(owners OwnerSource, issuer types.Address) *Registry {
	return &Registry{
		owners:    owners,
		issuer:    issuer,
		delegates: make(map[types.TokenID]types.Address),
		blanket:   make(map[types.Address]map[types.Address]bool),
	}
}

// Delegate sets the single resource delegate for a token, replacing any
// prior one. Only the current owner or a blanket delegate of the owner
// may set it. A zero delegate clears the slot.
func (r *Registry) Delegate(caller types.Address, id types.TokenID, delegate types.Address) error {
	owner, err := r.owners.OwnerOf(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != owner && !r.blanket[owner][caller] {
		return ErrNotAuthorized
	}
	if delegate.IsZero() {
		delete(r.delegates, id)
	} else {
		r.delegates[id] = delegate
	}

	log.Approvals.Debug().
		Stringer("token", id).
		Stringer("delegate", delegate).
		Msg("resource delegate set")
	return nil
}

// DelegateOf returns the single resource delegate for a token, or the
// zero address when none is set.
func (r *Registry) DelegateOf(id types.TokenID) types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.delegates[id]
}

// SetBlanketDelegate grants or revokes blanket resource delegation over
// all of the caller's tokens. Owner-indexed, so it survives individual
// token transfers. Idempotent.
func (r *Registry) SetBlanketDelegate(caller, operator types.Address, enabled bool) error {
	if caller == operator {
		return ErrSelfApproval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ops := r.blanket[caller]
	if ops == nil {
		ops = make(map[types.Address]bool)
		r.blanket[caller] = ops
	}
	ops[operator] = enabled
	return nil
}

// IsBlanketDelegate reports whether operator holds blanket delegation
// from owner.
func (r *Registry) IsBlanketDelegate(owner, operator types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blanket[owner][operator]
}

// IsAuthorized reports whether the caller may curate the token's
// resources: current owner, single delegate, or blanket delegate of the
// owner.
func (r *Registry) IsAuthorized(id types.TokenID, caller types.Address) (bool, error) {
	owner, err := r.owners.OwnerOf(id)
	if err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if caller == owner {
		return true, nil
	}
	if d := r.delegates[id]; !d.IsZero() && d == caller {
		return true, nil
	}
	return r.blanket[owner][caller], nil
}

// ClearDelegate drops the single delegate for a token. Wired into the
// ownership registry's owner-change hook so delegation never survives a
// transfer or burn.
func (r *Registry) ClearDelegate(id types.TokenID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.delegates, id)
}

// CanManageCatalog reports whether the caller holds the issuer
// capability.
func (r *Registry) CanManageCatalog(caller types.Address) bool {
	return caller == r.issuer
}

// Issuer returns the designated catalog issuer.
func (r *Registry) Issuer() types.Address {
	return r.issuer
}
