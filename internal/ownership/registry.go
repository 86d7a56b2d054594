// Package ownership implements the minimal token ownership registry the
// resource core collaborates with: who owns a token, transfer and burn
// mechanics, and transfer approval. It is deliberately small: the
// resource lifecycle lives elsewhere and only consumes OwnerOf, Exists
// and the pre-transfer hook.
package ownership

import (
	"errors"
	"sync"

	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/pkg/types"
)

// Ownership errors.
var (
	ErrNotFound      = errors.New("token does not exist")
	ErrAlreadyExists = errors.New("token already minted")
	ErrZeroAddress   = errors.New("zero address")
	ErrNotAuthorized = errors.New("caller may not move this token")
)

// Hook runs before a token changes owner or is burned, while the
// registry lock is held. Hooks clear per-token approvals in collaborating
// components and must not call back into the registry.
type Hook func(id types.TokenID)

// Registry tracks token owners, transfer approvals and operators.
type Registry struct {
	mu        sync.RWMutex
	owners    map[types.TokenID]types.Address
	approved  map[types.TokenID]types.Address
	operators map[types.Address]map[types.Address]bool
	hooks     []Hook
	burnHooks []Hook
}

// NewRegistry creates an empty ownership registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:    make(map[types.TokenID]types.Address),
		approved:  make(map[types.TokenID]types.Address),
		operators: make(map[types.Address]map[types.Address]bool),
	}
}

// OnOwnerChange registers a hook invoked before every transfer and burn.
func (r *Registry) OnOwnerChange(fn Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// OnBurn registers a hook invoked only when a token is destroyed, after
// the owner-change hooks. Collaborators whose state follows the token
// across transfers (not the owner) clean up here.
func (r *Registry) OnBurn(fn Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.burnHooks = append(r.burnHooks, fn)
}

// Mint creates a token owned by the given address.
func (r *Registry) Mint(to types.Address, id types.TokenID) error {
	if to.IsZero() {
		return ErrZeroAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.owners[id]; exists {
		return ErrAlreadyExists
	}
	r.owners[id] = to

	log.Ownership.Info().
		Stringer("token", id).
		Stringer("owner", to).
		Msg("token minted")
	return nil
}

// OwnerOf returns the current owner of a token.
func (r *Registry) OwnerOf(id types.TokenID) (types.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return types.Address{}, ErrNotFound
	}
	return owner, nil
}

// Exists reports whether a token has been minted and not burned.
func (r *Registry) Exists(id types.TokenID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[id]
	return ok
}

// ApproveTransfer sets the single transfer approval for a token. Only the
// owner or one of the owner's operators may set it.
func (r *Registry) ApproveTransfer(caller, approved types.Address, id types.TokenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return ErrNotFound
	}
	if caller != owner && !r.operators[owner][caller] {
		return ErrNotAuthorized
	}
	r.approved[id] = approved
	return nil
}

// ApprovedFor returns the transfer approval for a token, or the zero
// address when none is set.
func (r *Registry) ApprovedFor(id types.TokenID) types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approved[id]
}

// SetOperator grants or revokes operator standing over all of the
// caller's tokens.
func (r *Registry) SetOperator(caller, operator types.Address, enabled bool) error {
	if operator.IsZero() {
		return ErrZeroAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ops := r.operators[caller]
	if ops == nil {
		ops = make(map[types.Address]bool)
		r.operators[caller] = ops
	}
	ops[operator] = enabled
	return nil
}

// IsApprovedOrOwnerForTransfer reports whether the caller may move the
// token: owner, single transfer approval, or operator.
func (r *Registry) IsApprovedOrOwnerForTransfer(caller types.Address, id types.TokenID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return false, ErrNotFound
	}
	if caller == owner || r.approved[id] == caller || r.operators[owner][caller] {
		return true, nil
	}
	return false, nil
}

// Transfer moves a token to a new owner. Per-token approvals (the
// transfer approval here and any collaborator state cleared by hooks) do
// not survive the owner change.
func (r *Registry) Transfer(caller, to types.Address, id types.TokenID) error {
	if to.IsZero() {
		return ErrZeroAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return ErrNotFound
	}
	if caller != owner && r.approved[id] != caller && !r.operators[owner][caller] {
		return ErrNotAuthorized
	}

	for _, fn := range r.hooks {
		fn(id)
	}
	delete(r.approved, id)
	r.owners[id] = to

	log.Ownership.Info().
		Stringer("token", id).
		Stringer("from", owner).
		Stringer("to", to).
		Msg("token transferred")
	return nil
}

// Burn destroys a token. Hooks run first so collaborators drop their
// per-token state with it.
func (r *Registry) Burn(caller types.Address, id types.TokenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return ErrNotFound
	}
	if caller != owner && r.approved[id] != caller && !r.operators[owner][caller] {
		return ErrNotAuthorized
	}

	for _, fn := range r.hooks {
		fn(id)
	}
	for _, fn := range r.burnHooks {
		fn(id)
	}
	delete(r.approved, id)
	delete(r.owners, id)

	log.Ownership.Info().
		Stringer("token", id).
		Stringer("owner", owner).
		Msg("token burned")
	return nil
}
