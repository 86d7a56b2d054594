package catalog

import (
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/openregistry/multiasset/internal/events"
	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

// SetCustomData upserts the payload for a (resource, tag) pair. There is
// no existence check against the catalog: data may be associated before a
// resource or tag is formally registered.
func (s *Store) SetCustomData(caller types.Address, id types.ResourceID, tag types.TagID, data []byte) error {
	if err := s.authorize(caller); err != nil {
		return err
	}

	if err := s.db.Put(customKey(id, tag), data); err != nil {
		return fmt.Errorf("custom data put: %w", err)
	}

	sum := blake3.Sum256(data)
	log.Catalog.Debug().
		Stringer("resource", id).
		Stringer("tag", tag).
		Int("bytes", len(data)).
		Hex("digest", sum[:8]).
		Msg("custom data set")
	s.bus.Emit(events.CustomDataSet{ResourceID: id, TagID: tag})
	return nil
}

// CustomData returns the payload for a (resource, tag) pair. Absence is
// not an error: missing entries read as empty bytes.
func (s *Store) CustomData(id types.ResourceID, tag types.TagID) ([]byte, error) {
	data, err := s.db.Get(customKey(id, tag))
	if errors.Is(err, storage.ErrNotFound) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("custom data get: %w", err)
	}
	return data, nil
}
