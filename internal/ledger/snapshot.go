package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

var prefixToken = []byte("l/") // l/<tokenID BE8> -> tokenRecord JSON

// tokenRecord is the persisted form of a token's resource state.
// Membership is not stored; it is rebuilt from pending+active on load.
type tokenRecord struct {
	Pending    []types.ResourceID                    `json:"pending,omitempty"`
	Active     []types.ResourceID                    `json:"active,omitempty"`
	Priorities []uint64                              `json:"priorities,omitempty"`
	Overwrite  map[types.ResourceID]types.ResourceID `json:"overwrite,omitempty"`
}

// tokenKey builds the DB key for a token's snapshot record.
func tokenKey(id types.TokenID) []byte {
	key := make([]byte, len(prefixToken)+8)
	copy(key, prefixToken)
	binary.BigEndian.PutUint64(key[len(prefixToken):], uint64(id))
	return key
}

// SaveTo writes a full snapshot of the ledger into the given DB,
// replacing any prior snapshot. The write is atomic where the DB
// supports batching.
func (l *Ledger) SaveTo(db storage.DB) error {
	// Collect keys of the existing snapshot so tokens cleared since the
	// last save disappear from it.
	var stale [][]byte
	err := db.ForEach(prefixToken, func(key, _ []byte) error {
		k := make([]byte, len(key))
		copy(k, key)
		stale = append(stale, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger snapshot scan: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

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
			return fmt.Errorf("ledger snapshot delete: %w", err)
		}
	}
	for id, st := range l.tokens {
		rec := tokenRecord{
			Pending:    st.pending,
			Active:     st.active,
			Priorities: st.priorities,
			Overwrite:  st.overwrite,
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("ledger snapshot marshal token %s: %w", id, err)
		}
		if err := put(tokenKey(id), data); err != nil {
			return fmt.Errorf("ledger snapshot put token %s: %w", id, err)
		}
	}

	if batch != nil {
		if err := batch.Commit(); err != nil {
			return fmt.Errorf("ledger snapshot commit: %w", err)
		}
	}
	return nil
}

// Load replaces the in-memory state with the snapshot stored in the
// given DB. Membership sets are rebuilt from the persisted sequences.
func (l *Ledger) Load(db storage.DB) error {
	loaded := make(map[types.TokenID]*tokenState)

	err := db.ForEach(prefixToken, func(key, value []byte) error {
		if len(key) != len(prefixToken)+8 {
			return nil // Malformed key, skip.
		}
		id := types.TokenID(binary.BigEndian.Uint64(key[len(prefixToken):]))

		var rec tokenRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("ledger snapshot unmarshal token %s: %w", id, err)
		}
		if len(rec.Priorities) != len(rec.Active) {
			return fmt.Errorf("ledger snapshot token %s: %d priorities for %d active", id, len(rec.Priorities), len(rec.Active))
		}

		st := newTokenState()
		st.pending = rec.Pending
		st.active = rec.Active
		st.priorities = rec.Priorities
		for _, rid := range rec.Pending {
			st.members[rid] = struct{}{}
		}
		for _, rid := range rec.Active {
			st.members[rid] = struct{}{}
		}
		for rid, target := range rec.Overwrite {
			st.overwrite[rid] = target
		}
		loaded[id] = st
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger snapshot load: %w", err)
	}

	l.mu.Lock()
	l.tokens = loaded
	l.mu.Unlock()
	return nil
}
