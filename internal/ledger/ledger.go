// Package ledger implements the per-token resource lifecycle: anyone may
// propose attaching a catalog resource to a token, the owner or a
// resource delegate accepts or rejects proposals, and accepted resources
// form the ordered active set that URI resolution reads.
//
// Removal from the pending sequence is swap-remove keyed by the resource
// id resolved at the given index: the last pending entry moves into the
// vacated slot, so pending order is disturbed by every accept/reject.
// Callers holding indices across mutations must re-enumerate.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openregistry/multiasset/internal/events"
	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/pkg/types"
)

// MaxPending caps the pending sequence per token. The bound keeps
// proposal spam against a single token from growing state without limit.
const MaxPending = 128

// Ledger errors.
var (
	ErrTokenNotFound    = errors.New("token does not exist")
	ErrResourceNotFound = errors.New("resource not in catalog")
	ErrAlreadyAttached  = errors.New("resource already attached to token")
	ErrPendingFull      = errors.New("pending set at capacity")
	ErrIndexOutOfRange  = errors.New("pending index out of range")
	ErrNotAuthorized    = errors.New("caller lacks owner or delegate standing")
	ErrLengthMismatch   = errors.New("priority list length mismatch")
)

// CatalogView is the catalog surface the ledger needs.
type CatalogView interface {
	Has(id types.ResourceID) (bool, error)
}

// TokenSource reports token existence.
type TokenSource interface {
	Exists(id types.TokenID) bool
}

// Authorizer answers the consolidated owner-or-delegate question once per
// operation.
type Authorizer interface {
	IsAuthorized(id types.TokenID, caller types.Address) (bool, error)
}

// tokenState holds one token's resource lifecycle. membership mirrors
// pending+active exactly; priorities stays parallel to active.
type tokenState struct {
	pending    []types.ResourceID
	active     []types.ResourceID
	priorities []uint64
	members    map[types.ResourceID]struct{}
	overwrite  map[types.ResourceID]types.ResourceID
}

func newTokenState() *tokenState {
	return &tokenState{
		members:   make(map[types.ResourceID]struct{}),
		overwrite: make(map[types.ResourceID]types.ResourceID),
	}
}

// Ledger is the per-token resource state machine.
//
// Lock order across the system is ownership, then approvals, then the
// ledger. Collaborator lookups (existence, authorization, catalog
// membership) therefore happen before the ledger lock is taken; all
// ledger-local preconditions are re-checked and committed under one
// critical section, so no partial state is ever observable.
type Ledger struct {
	mu      sync.Mutex
	tokens  map[types.TokenID]*tokenState
	catalog CatalogView
	source  TokenSource
	auth    Authorizer
	bus     *events.Bus
}

// New creates a ledger bound to its collaborators. All handles are
// explicit; the ledger holds no global state.
func New(catalog CatalogView, source TokenSource, auth Authorizer, bus *events.Bus) *Ledger {
	return &Ledger{
		tokens:  make(map[types.TokenID]*tokenState),
		catalog: catalog,
		source:  source,
		auth:    auth,
		bus:     bus,
	}
}

// authorize resolves the owner-or-delegate check for a mutating
// operation.
func (l *Ledger) authorize(id types.TokenID, caller types.Address) error {
	ok, err := l.auth.IsAuthorized(id, caller)
	if err != nil {
		return fmt.Errorf("authorize token %s: %w", id, err)
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// Propose appends a catalog resource to the token's pending sequence.
// Proposals are open to any caller; only acceptance is owner-gated. A
// non-zero overwriteTarget records the intent to replace that active
// resource upon acceptance. The target is not validated here; a stale
// target is tolerated as a no-op at accept time.
func (l *Ledger) Propose(tokenID types.TokenID, resourceID types.ResourceID, overwriteTarget types.ResourceID) error {
	if !l.source.Exists(tokenID) {
		return ErrTokenNotFound
	}
	registered, err := l.catalog.Has(resourceID)
	if err != nil {
		return fmt.Errorf("catalog lookup: %w", err)
	}
	if !registered {
		return ErrResourceNotFound
	}

	l.mu.Lock()
	st := l.tokens[tokenID]
	if st != nil {
		if _, attached := st.members[resourceID]; attached {
			l.mu.Unlock()
			return ErrAlreadyAttached
		}
		if len(st.pending) >= MaxPending {
			l.mu.Unlock()
			return ErrPendingFull
		}
	} else {
		st = newTokenState()
		l.tokens[tokenID] = st
	}

	st.pending = append(st.pending, resourceID)
	st.members[resourceID] = struct{}{}
	if !overwriteTarget.IsZero() {
		st.overwrite[resourceID] = overwriteTarget
	}
	l.mu.Unlock()

	log.Ledger.Debug().
		Stringer("token", tokenID).
		Stringer("resource", resourceID).
		Stringer("overwrite", overwriteTarget).
		Msg("resource proposed")
	l.bus.Emit(events.ResourceProposed{TokenID: tokenID, ResourceID: resourceID})
	return nil
}

// Accept promotes the pending entry at index to the active sequence. If
// the entry carries an overwrite intent whose target is still active, the
// target is removed first. The new resource enters active with priority 0.
func (l *Ledger) Accept(caller types.Address, tokenID types.TokenID, index int) error {
	if err := l.authorize(tokenID, caller); err != nil {
		return err
	}

	l.mu.Lock()
	st := l.tokens[tokenID]
	if st == nil || index < 0 || index >= len(st.pending) {
		l.mu.Unlock()
		return ErrIndexOutOfRange
	}

	resourceID := st.pending[index]
	st.removePending(resourceID)

	superseded := types.ResourceID(0)
	if target, ok := st.overwrite[resourceID]; ok {
		delete(st.overwrite, resourceID)
		if st.removeActive(target) {
			delete(st.members, target)
			superseded = target
		}
	}

	st.active = append(st.active, resourceID)
	st.priorities = append(st.priorities, 0)
	l.mu.Unlock()

	log.Ledger.Info().
		Stringer("token", tokenID).
		Stringer("resource", resourceID).
		Msg("resource accepted")
	l.bus.Emit(events.ResourceAccepted{TokenID: tokenID, ResourceID: resourceID})
	if !superseded.IsZero() {
		l.bus.Emit(events.ResourceOverwritten{TokenID: tokenID, Superseded: superseded})
	}
	return nil
}

// Reject discards the pending entry at index, clearing its membership and
// any overwrite intent.
func (l *Ledger) Reject(caller types.Address, tokenID types.TokenID, index int) error {
	if err := l.authorize(tokenID, caller); err != nil {
		return err
	}

	l.mu.Lock()
	st := l.tokens[tokenID]
	if st == nil || index < 0 || index >= len(st.pending) {
		l.mu.Unlock()
		return ErrIndexOutOfRange
	}

	resourceID := st.pending[index]
	st.removePending(resourceID)
	delete(st.members, resourceID)
	delete(st.overwrite, resourceID)
	l.mu.Unlock()

	log.Ledger.Info().
		Stringer("token", tokenID).
		Stringer("resource", resourceID).
		Msg("resource rejected")
	l.bus.Emit(events.ResourceRejected{TokenID: tokenID, ResourceID: resourceID})
	return nil
}

// RejectAll discards every pending entry in one step. Active resources,
// priorities and intents of non-pending resources are untouched; calling
// it with nothing pending is a no-op. The emitted rejection carries
// resource id 0 as the batch sentinel.
func (l *Ledger) RejectAll(caller types.Address, tokenID types.TokenID) error {
	if err := l.authorize(tokenID, caller); err != nil {
		return err
	}

	l.mu.Lock()
	if st := l.tokens[tokenID]; st != nil {
		for _, id := range st.pending {
			delete(st.members, id)
			delete(st.overwrite, id)
		}
		st.pending = nil
	}
	l.mu.Unlock()

	log.Ledger.Info().Stringer("token", tokenID).Msg("pending resources rejected")
	l.bus.Emit(events.ResourceRejected{TokenID: tokenID, ResourceID: 0})
	return nil
}

// SetPriority replaces the token's priority sequence wholesale. The new
// sequence must match the active sequence in length. Priorities are
// caller-assigned weights for external consumers; the ledger never
// reorders active by them.
func (l *Ledger) SetPriority(caller types.Address, tokenID types.TokenID, priorities []uint64) error {
	if err := l.authorize(tokenID, caller); err != nil {
		return err
	}

	l.mu.Lock()
	st := l.tokens[tokenID]
	activeLen := 0
	if st != nil {
		activeLen = len(st.active)
	}
	if len(priorities) != activeLen {
		l.mu.Unlock()
		return ErrLengthMismatch
	}
	if st != nil {
		st.priorities = append([]uint64(nil), priorities...)
	}
	l.mu.Unlock()

	l.bus.Emit(events.PrioritiesUpdated{TokenID: tokenID})
	return nil
}

// ClearToken drops all resource state for a destroyed token. Wired into
// the ownership registry's burn hook; resource state follows the token
// across transfers and only dies with it.
func (l *Ledger) ClearToken(tokenID types.TokenID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tokens, tokenID)
}

// Pending returns a copy of the token's pending sequence in attachment
// order (as disturbed by prior swap-removals).
func (l *Ledger) Pending(tokenID types.TokenID) []types.ResourceID {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.tokens[tokenID]
	if st == nil {
		return []types.ResourceID{}
	}
	return append([]types.ResourceID{}, st.pending...)
}

// Active returns a copy of the token's active sequence in acceptance
// order.
func (l *Ledger) Active(tokenID types.TokenID) []types.ResourceID {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.tokens[tokenID]
	if st == nil {
		return []types.ResourceID{}
	}
	return append([]types.ResourceID{}, st.active...)
}

// Priorities returns a copy of the token's priority sequence, parallel to
// Active.
func (l *Ledger) Priorities(tokenID types.TokenID) []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.tokens[tokenID]
	if st == nil {
		return []uint64{}
	}
	return append([]uint64{}, st.priorities...)
}

// OverwriteTarget returns the declared overwrite target for a pending
// resource, or 0 when none is recorded.
func (l *Ledger) OverwriteTarget(tokenID types.TokenID, resourceID types.ResourceID) types.ResourceID {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.tokens[tokenID]
	if st == nil {
		return 0
	}
	return st.overwrite[resourceID]
}

// IsMember reports whether a resource is currently pending or active for
// the token.
func (l *Ledger) IsMember(tokenID types.TokenID, resourceID types.ResourceID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.tokens[tokenID]
	if st == nil {
		return false
	}
	_, ok := st.members[resourceID]
	return ok
}

// removePending removes a resource id from pending via swap-remove.
func (st *tokenState) removePending(id types.ResourceID) {
	for i, got := range st.pending {
		if got == id {
			last := len(st.pending) - 1
			st.pending[i] = st.pending[last]
			st.pending = st.pending[:last]
			return
		}
	}
}

// removeActive removes a resource id from active via swap-remove, moving
// the parallel priority slot in lockstep. Returns false when the id is
// not active.
func (st *tokenState) removeActive(id types.ResourceID) bool {
	for i, got := range st.active {
		if got == id {
			last := len(st.active) - 1
			st.active[i] = st.active[last]
			st.active = st.active[:last]
			st.priorities[i] = st.priorities[last]
			st.priorities = st.priorities[:last]
			return true
		}
	}
	return false
}
