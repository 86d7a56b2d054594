package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/openregistry/multiasset/internal/events"
	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

// Store persists the resource catalog. Registration order is kept in a
// dedicated index record so enumeration survives restarts.
type Store struct {
	mu    sync.RWMutex
	db    storage.DB
	bus   *events.Bus
	auth  Authorizer
	order []types.ResourceID
}

// NewStore opens a catalog over the given DB, loading the registration
// index if one exists. auth may be nil to disable the issuer gate (tests,
// embedded use).
func NewStore(db storage.DB, bus *events.Bus, auth Authorizer) (*Store, error) {
	s := &Store{db: db, bus: bus, auth: auth}

	data, err := db.Get(keyIndex)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog index load: %w", err)
	}
	if err := json.Unmarshal(data, &s.order); err != nil {
		return nil, fmt.Errorf("catalog index unmarshal: %w", err)
	}
	return s, nil
}

// authorize checks the issuer capability for mutating operations.
func (s *Store) authorize(caller types.Address) error {
	if s.auth != nil && !s.auth.CanManageCatalog(caller) {
		return ErrNotAuthorized
	}
	return nil
}

// Register adds a new resource under a non-zero, previously unused id.
// The id and URI are immutable afterwards.
func (s *Store) Register(caller types.Address, id types.ResourceID, uri string, tags []types.TagID) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if id.IsZero() {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.db.Has(resourceKey(id))
	if err != nil {
		return fmt.Errorf("catalog lookup: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	res := Resource{ID: id, URI: uri, Tags: append([]types.TagID(nil), tags...)}
	order := append(append([]types.ResourceID(nil), s.order...), id)
	if err := s.writeWithIndex(&res, order); err != nil {
		return err
	}
	s.order = order

	log.Catalog.Info().
		Stringer("resource", id).
		Str("uri", uri).
		Int("tags", len(tags)).
		Msg("resource registered")
	s.bus.Emit(events.CatalogRegistered{ResourceID: id})
	return nil
}

// writeWithIndex commits a resource record and the registration index in
// one atomic batch where the DB supports it.
func (s *Store) writeWithIndex(res *Resource, order []types.ResourceID) error {
	resData, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("resource marshal: %w", err)
	}
	idxData, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("catalog index marshal: %w", err)
	}

	if batcher, ok := s.db.(storage.Batcher); ok {
		batch := batcher.NewBatch()
		if err := batch.Put(resourceKey(res.ID), resData); err != nil {
			return fmt.Errorf("catalog batch: %w", err)
		}
		if err := batch.Put(keyIndex, idxData); err != nil {
			return fmt.Errorf("catalog batch: %w", err)
		}
		return batch.Commit()
	}
	if err := s.db.Put(resourceKey(res.ID), resData); err != nil {
		return fmt.Errorf("catalog put: %w", err)
	}
	return s.db.Put(keyIndex, idxData)
}

// Get retrieves a resource record.
func (s *Store) Get(id types.ResourceID) (*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(id)
}

// load reads a resource without taking the lock; callers hold it.
func (s *Store) load(id types.ResourceID) (*Resource, error) {
	data, err := s.db.Get(resourceKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog get: %w", err)
	}
	var res Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("resource unmarshal: %w", err)
	}
	return &res, nil
}

// put writes a resource record back; callers hold the lock.
func (s *Store) put(res *Resource) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("resource marshal: %w", err)
	}
	return s.db.Put(resourceKey(res.ID), data)
}

// Has reports whether a resource id is registered.
func (s *Store) Has(id types.ResourceID) (bool, error) {
	return s.db.Has(resourceKey(id))
}

// AddTag appends a tag id to the resource's tag list. Duplicates are
// permitted; order is insertion order.
func (s *Store) AddTag(caller types.Address, id types.ResourceID, tag types.TagID) error {
	if err := s.authorize(caller); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load(id)
	if err != nil {
		return err
	}
	res.Tags = append(res.Tags, tag)
	if err := s.put(res); err != nil {
		return err
	}

	s.bus.Emit(events.TagAdded{ResourceID: id, TagID: tag})
	return nil
}

// RemoveTagAt removes the tag at the given position by swapping it with
// the last entry and truncating. Tag order after removal is therefore not
// preserved.
func (s *Store) RemoveTagAt(caller types.Address, id types.ResourceID, index int) error {
	if err := s.authorize(caller); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(res.Tags) {
		return ErrIndexOutOfRange
	}

	removed := res.Tags[index]
	last := len(res.Tags) - 1
	res.Tags[index] = res.Tags[last]
	res.Tags = res.Tags[:last]
	if err := s.put(res); err != nil {
		return err
	}

	s.bus.Emit(events.TagRemoved{ResourceID: id, TagID: removed})
	return nil
}

// SetTokenEnumerated flags or unflags a resource for tokenID-suffixed URI
// composition.
func (s *Store) SetTokenEnumerated(caller types.Address, id types.ResourceID, enumerated bool) error {
	if err := s.authorize(caller); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load(id)
	if err != nil {
		return err
	}
	res.TokenEnumerated = enumerated
	return s.put(res)
}

// List returns all resources in registration order.
func (s *Store) List() ([]Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Resource, 0, len(s.order))
	for _, id := range s.order {
		res, err := s.load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// Count returns the number of registered resources.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
