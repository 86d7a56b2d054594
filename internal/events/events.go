// Package events carries state-change notifications for external
// observers and indexers. Delivery is synchronous and in-process:
// emitters publish after their state commit, subscribers must not
// block.
package events

import "github.com/openregistry/multiasset/pkg/types"

// Event is a state-change notification.
type Event interface {
	// Kind returns a stable name for the event type.
	Kind() string
}

// CatalogRegistered signals a new resource in the catalog.
type CatalogRegistered struct {
	ResourceID types.ResourceID
}

// ResourceProposed signals a resource landing in a token's pending set.
type ResourceProposed struct {
	TokenID    types.TokenID
	ResourceID types.ResourceID
}

// ResourceAccepted signals promotion of a pending resource to active.
type ResourceAccepted struct {
	TokenID    types.TokenID
	ResourceID types.ResourceID
}

// ResourceRejected signals removal of a pending resource.
// ResourceID 0 means the whole pending set was rejected in one batch.
type ResourceRejected struct {
	TokenID    types.TokenID
	ResourceID types.ResourceID
}

// ResourceOverwritten signals that accepting a resource displaced an
// active one.
type ResourceOverwritten struct {
	TokenID    types.TokenID
	Superseded types.ResourceID
}

// PrioritiesUpdated signals a wholesale priority replacement.
type PrioritiesUpdated struct {
	TokenID types.TokenID
}

// CustomDataSet signals an upsert in the custom data store.
type CustomDataSet struct {
	ResourceID types.ResourceID
	TagID      types.TagID
}

// TagAdded signals a tag appended to a resource's tag list.
type TagAdded struct {
	ResourceID types.ResourceID
	TagID      types.TagID
}

// TagRemoved signals a tag removed from a resource's tag list.
type TagRemoved struct {
	ResourceID types.ResourceID
	TagID      types.TagID
}

func (CatalogRegistered) Kind() string   { return "catalog_registered" }
func (ResourceProposed) Kind() string    { return "resource_proposed" }
func (ResourceAccepted) Kind() string    { return "resource_accepted" }
func (ResourceRejected) Kind() string    { return "resource_rejected" }
func (ResourceOverwritten) Kind() string { return "resource_overwritten" }
func (PrioritiesUpdated) Kind() string   { return "priorities_updated" }
func (CustomDataSet) Kind() string       { return "custom_data_set" }
func (TagAdded) Kind() string            { return "tag_added" }
func (TagRemoved) Kind() string          { return "tag_removed" }
