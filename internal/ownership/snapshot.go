package ownership

import (
	"encoding/binary"
	"fmt"

	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

var prefixOwner = []byte("o/") // o/<tokenID BE8> -> owner address bytes

// ownerKey builds the DB key for a token's owner record.
func ownerKey(id types.TokenID) []byte {
	key := make([]byte, len(prefixOwner)+8)
	copy(key, prefixOwner)
	binary.BigEndian.PutUint64(key[len(prefixOwner):], uint64(id))
	return key
}

// SaveTo writes a full snapshot of the owner map into the given DB,
// replacing any prior snapshot. Transfer approvals and operator grants
// are session state and are not persisted. The write is atomic where
// the DB supports batching.
func (r *Registry) SaveTo(db storage.DB) error {
	var stale [][]byte
	err := db.ForEach(prefixOwner, func(key, _ []byte) error {
		k := make([]byte, len(key))
		copy(k, key)
		stale = append(stale, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ownership snapshot scan: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var batch storage.Batch
	if batcher, ok := db.(storage.Batcher); ok {
		batch = batcher.NewBatch()
	}

	put := func(key, value []byte) error {
		if batch != nil {
			return batch.Put(key, value)
		}
		return db.Put(key, value)
	}
	del := func(key []byte) error {
		if batch != nil {
			return batch.Delete(key)
		}
		return db.Delete(key)
	}

	for _, key := range stale {
		if err := del(key); err != nil {
			return fmt.Errorf("ownership snapshot delete: %w", err)
		}
	}
	for id, owner := range r.owners {
		if err := put(ownerKey(id), owner.Bytes()); err != nil {
			return fmt.Errorf("ownership snapshot put token %s: %w", id, err)
		}
	}

	if batch != nil {
		if err := batch.Commit(); err != nil {
			return fmt.Errorf("ownership snapshot commit: %w", err)
		}
	}
	return nil
}

// Load replaces the owner map with the snapshot stored in the given DB.
// Approvals and operator grants start empty.
func (r *Registry) Load(db storage.DB) error {
	loaded := make(map[types.TokenID]types.Address)

	err := db.ForEach(prefixOwner, func(key, value []byte) error {
		if len(key) != len(prefixOwner)+8 {
			return nil // Malformed key, skip.
		}
		id := types.TokenID(binary.BigEndian.Uint64(key[len(prefixOwner):]))

		if len(value) != len(types.Address{}) {
			return fmt.Errorf("ownership snapshot token %s: %d-byte owner record", id, len(value))
		}
		var owner types.Address
		copy(owner[:], value)
		if owner.IsZero() {
			return fmt.Errorf("ownership snapshot token %s: zero owner", id)
		}
		loaded[id] = owner
		return nil
	})
	if err != nil {
		return fmt.Errorf("ownership snapshot load: %w", err)
	}

	r.mu.Lock()
	r.owners = loaded
	r.approved = make(map[types.TokenID]types.Address)
	r.operators = make(map[types.Address]map[types.Address]bool)
	r.mu.Unlock()
	return nil
}
