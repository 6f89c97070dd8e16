package store

import (
	"reflect"
	"sort"
	"sync"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/metrics"
	"github.com/dd0wney/cluso-memstore/pkg/record"
)

// MainStore maps record types to their ObjectStore. Stores are created on
// first use, exactly once per type.
//
// Lock order is MainStore then ObjectStore. Operations on ms hold the
// MainStore lock while they run against the ObjectStore, so a concurrent
// Clear never drops a store in the middle of a write.
type MainStore struct {
	mu     sync.Mutex
	stores map[reflect.Type]*ObjectStore

	defaultIDKey string
	// type name -> fields registered when the type's store is created
	foreignKeys map[string][]string

	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a MainStore.
type Option func(*MainStore)

// WithLogger sets the logger handed to every ObjectStore.
func WithLogger(l logging.Logger) Option {
	return func(ms *MainStore) { ms.logger = l }
}

// WithMetrics enables metrics on every ObjectStore.
func WithMetrics(r *metrics.Registry) Option {
	return func(ms *MainStore) { ms.metrics = r }
}

// WithDefaultIDKey sets the id key used by types declaring neither an id key
// nor a primary key.
func WithDefaultIDKey(key string) Option {
	return func(ms *MainStore) { ms.defaultIDKey = key }
}

// WithForeignKeys registers fields on the store for the named type as soon
// as it is created. typeName is matched against record.TypeName.
func WithForeignKeys(typeName string, fields ...string) Option {
	return func(ms *MainStore) {
		ms.foreignKeys[typeName] = append(ms.foreignKeys[typeName], fields...)
	}
}

// NewMainStore creates an empty registry.
func NewMainStore(opts ...Option) *MainStore {
	ms := &MainStore{
		stores:       make(map[reflect.Type]*ObjectStore),
		defaultIDKey: record.DefaultIDKey,
		foreignKeys:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(ms)
	}
	ms.logger = logging.OrDefault(ms.logger)
	return ms
}

// StoreFor returns the ObjectStore for t, creating it on first use.
func (ms *MainStore) StoreFor(t reflect.Type) *ObjectStore {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.storeForLocked(t)
}

// with runs fn against the store for t while holding ms.mu.
func (ms *MainStore) with(t reflect.Type, fn func(*ObjectStore)) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	fn(ms.storeForLocked(t))
}

func (ms *MainStore) storeForLocked(t reflect.Type) *ObjectStore {
	if s, ok := ms.stores[t]; ok {
		return s
	}

	s := NewObjectStore(t, ms.defaultIDKey, ms.logger, ms.metrics)
	for _, field := range ms.foreignKeys[s.TypeName()] {
		s.RegisterForeignKey(field)
	}
	ms.stores[t] = s
	ms.metrics.SetStoresTotal(len(ms.stores))
	ms.logger.Debug("object store created",
		logging.RecordType(s.TypeName()),
		logging.String("id_key", s.IDKey()))
	return s
}

// StoreForRecord returns the ObjectStore for rec's type.
func (ms *MainStore) StoreForRecord(rec record.Record) *ObjectStore {
	return ms.StoreFor(record.TypeOf(rec))
}

// Store stores rec in the store for its type.
func (ms *MainStore) Store(rec record.Record) error {
	return ms.StoreJournaled(rec, nil)
}

// StoreJournaled is Store reporting the change to j.
func (ms *MainStore) StoreJournaled(rec record.Record, j Journal) error {
	if record.IsAbsent(rec) {
		return NewError("store").Cause(ErrNilRecord).Err()
	}
	var err error
	ms.with(record.TypeOf(rec), func(s *ObjectStore) { err = s.StoreJournaled(rec, j) })
	return err
}

// Get returns the record of type t stored under id.
func (ms *MainStore) Get(t reflect.Type, id any) (rec record.Record, ok bool) {
	ms.with(t, func(s *ObjectStore) { rec, ok = s.Get(id) })
	return rec, ok
}

// Remove removes rec from the store for its type.
func (ms *MainStore) Remove(rec record.Record) bool {
	return ms.RemoveJournaled(rec, nil)
}

// RemoveJournaled is Remove reporting the removed record to j.
func (ms *MainStore) RemoveJournaled(rec record.Record, j Journal) bool {
	if record.IsAbsent(rec) {
		return false
	}
	var removed bool
	ms.with(record.TypeOf(rec), func(s *ObjectStore) { removed = s.RemoveJournaled(rec, j) })
	return removed
}

// UpdateForeignKeysFor refreshes rec's index entries in the store for its
// type.
func (ms *MainStore) UpdateForeignKeysFor(rec record.Record) error {
	return ms.UpdateForeignKeysForJournaled(rec, nil)
}

// UpdateForeignKeysForJournaled is UpdateForeignKeysFor reporting changed
// fields to j.
func (ms *MainStore) UpdateForeignKeysForJournaled(rec record.Record, j Journal) error {
	if record.IsAbsent(rec) {
		return NewError("update_foreign_keys").Cause(ErrNilRecord).Err()
	}
	var err error
	ms.with(record.TypeOf(rec), func(s *ObjectStore) { err = s.UpdateForeignKeysForJournaled(rec, j) })
	return err
}

// RegisterForeignKey registers field on the store for t.
func (ms *MainStore) RegisterForeignKey(t reflect.Type, field string) {
	ms.with(t, func(s *ObjectStore) { s.RegisterForeignKey(field) })
}

// Clear forgets every store. ObjectStores obtained earlier keep their
// contents but are no longer reachable through ms.
func (ms *MainStore) Clear() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.stores = make(map[reflect.Type]*ObjectStore)
	ms.metrics.SetStoresTotal(0)
}

// Types returns the types with a store, sorted by name.
func (ms *MainStore) Types() []reflect.Type {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	types := make([]reflect.Type, 0, len(ms.stores))
	for t := range ms.stores {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// Statistics returns per-store statistics keyed by type name.
func (ms *MainStore) Statistics() map[string]Statistics {
	ms.mu.Lock()
	stores := make([]*ObjectStore, 0, len(ms.stores))
	for _, s := range ms.stores {
		stores = append(stores, s)
	}
	ms.mu.Unlock()

	out := make(map[string]Statistics, len(stores))
	for _, s := range stores {
		out[s.TypeName()] = s.Statistics()
	}
	return out
}

// For returns the ObjectStore for T.
func For[T record.Record](ms *MainStore) *ObjectStore {
	return ms.StoreFor(reflect.TypeFor[T]())
}

// Get returns the T stored under id.
func Get[T record.Record](ms *MainStore, id any) (T, bool) {
	var zero T
	rec, ok := ms.Get(reflect.TypeFor[T](), id)
	if !ok {
		return zero, false
	}
	t, ok := rec.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Where returns the T records indexed under value for field.
func Where[T record.Record](ms *MainStore, field string, value any) []T {
	var recs []record.Record
	ms.with(reflect.TypeFor[T](), func(s *ObjectStore) { recs = s.GetWithForeignKey(field, value) })
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if t, ok := rec.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
