package logstore

import (
	"sync"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/schema"
)

// Registry derives and caches stores scoped to a source identifier. Scoped stores share the base store's table, so
// scoping is a filter rather than a partition. Entries are created on first use and never evicted.
type Registry struct {
	base *Store

	lock   sync.RWMutex
	scoped map[string]*Store
}

// NewRegistry returns a registry deriving scoped stores from the given base store, whose schema must map the
// 'source_id' field.
func NewRegistry(base *Store) (*Registry, error) {
	if !base.mapper.Schema().Has(schema.FieldSourceID) {
		return nil, &schema.SchemaError{Field: schema.FieldSourceID, Reason: "required for source scoped logging"}
	}

	return &Registry{base: base, scoped: make(map[string]*Store)}, nil
}

// Base returns the unscoped store.
func (r *Registry) Base() *Store {
	return r.base
}

// Get returns the store scoped to the given source, an empty source returns the base store. Concurrent calls for the
// same source return the same instance.
func (r *Registry) Get(sourceID string) *Store {
	if sourceID == "" {
		return r.base
	}

	r.lock.RLock()
	store, ok := r.scoped[sourceID]
	r.lock.RUnlock()

	if ok {
		return store
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if store, ok := r.scoped[sourceID]; ok {
		return store
	}

	// The source field is validated by 'NewRegistry' so this can't fail
	store, _ = r.base.With(Fields{schema.FieldSourceID: sourceID})

	r.scoped[sourceID] = store

	r.base.logger.Debugf("(Log Store) Created store for source %v", log.UserDataValue(sourceID))

	return store
}

// Sources returns the number of scoped stores created so far.
func (r *Registry) Sources() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.scoped)
}
