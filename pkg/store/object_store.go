package store

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/metrics"
	"github.com/dd0wney/cluso-memstore/pkg/record"
)

// ObjectStore holds every record of one type, keyed by identifier, plus the
// foreign key indexes registered for that type.
//
// Every exported method holds the store's mutex for its full duration, so
// operations are atomic with respect to each other.
type ObjectStore struct {
	typ      reflect.Type
	typeName string
	idKey    string

	mu sync.Mutex

	// id -> record
	primary map[any]record.Record
	// field -> value -> ids
	indexes map[string]map[any]*bucket
	// id -> field -> value the record was last indexed under
	lastIndexed map[any]map[string]any

	logger  logging.Logger
	metrics *metrics.Registry
}

// NewObjectStore creates an empty store for records of type t. The id key is
// resolved once here; fallbackIDKey is used when t declares none.
func NewObjectStore(t reflect.Type, fallbackIDKey string, logger logging.Logger, reg *metrics.Registry) *ObjectStore {
	name := record.TypeName(t)
	return &ObjectStore{
		typ:         t,
		typeName:    name,
		idKey:       record.ResolveIDKey(t, fallbackIDKey),
		primary:     make(map[any]record.Record),
		indexes:     make(map[string]map[any]*bucket),
		lastIndexed: make(map[any]map[string]any),
		logger:      logging.OrDefault(logger).With(logging.Component("object_store"), logging.RecordType(name)),
		metrics:     reg,
	}
}

// Type returns the record type this store holds.
func (s *ObjectStore) Type() reflect.Type { return s.typ }

// TypeName returns the printable record type name.
func (s *ObjectStore) TypeName() string { return s.typeName }

// IDKey returns the resolved identifier field name.
func (s *ObjectStore) IDKey() string { return s.idKey }

// Store inserts rec, or replaces the stored record with the same identifier
// and refreshes its index entries.
func (s *ObjectStore) Store(rec record.Record) error {
	return s.StoreJournaled(rec, nil)
}

// StoreJournaled is Store reporting the applied change to j.
func (s *ObjectStore) StoreJournaled(rec record.Record, j Journal) (err error) {
	defer s.observe("store", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, values, err := s.prepare("store", rec)
	if err != nil {
		return err
	}

	prior, exists := s.primary[id]
	s.primary[id] = rec

	if !exists {
		for field, v := range values {
			s.bucketFor(field, v).add(id)
			s.snapshot(id, field, v)
		}
		if j != nil {
			j.Inserted(s, rec)
		}
		s.metrics.SetStoreRecords(s.typeName, len(s.primary))
		return nil
	}

	changed := s.reindex(id, values)
	if j != nil {
		if !sameRecord(prior, rec) {
			j.Replaced(s, prior, rec)
		} else if len(changed) > 0 {
			j.Reindexed(s, rec, changed)
		}
	}
	return nil
}

// Get returns the record stored under id.
func (s *ObjectStore) Get(id any) (rec record.Record, ok bool) {
	defer s.observe("get", time.Now(), nil)

	if !record.Comparable(id) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok = s.primary[id]
	return rec, ok
}

// GetWithForeignKey returns the records currently indexed under value for
// field, in the order they entered the bucket. It never returns nil.
func (s *ObjectStore) GetWithForeignKey(field string, value any) []record.Record {
	defer s.observe("get_with_foreign_key", time.Now(), nil)

	out := []record.Record{}
	if record.IsAbsent(value) || !record.Comparable(value) {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[field]
	if !ok {
		return out
	}
	b, ok := idx[value]
	if !ok {
		return out
	}
	for _, id := range b.order {
		out = append(out, s.primary[id])
	}
	return out
}

// GetForeignKeyIndex returns a copy of every bucket for field. It returns an
// empty map when field is not registered.
func (s *ObjectStore) GetForeignKeyIndex(field string) map[any][]record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[any][]record.Record)
	for value, b := range s.indexes[field] {
		recs := make([]record.Record, 0, b.len())
		for _, id := range b.order {
			recs = append(recs, s.primary[id])
		}
		out[value] = recs
	}
	return out
}

// RegisterForeignKey creates an index on field if there is none and indexes
// every stored record on that field. Calling it again is harmless.
func (s *ObjectStore) RegisterForeignKey(field string) {
	defer s.observe("register_foreign_key", time.Now(), nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[field]; !ok {
		s.indexes[field] = make(map[any]*bucket)
		s.metrics.SetForeignKeys(s.typeName, len(s.indexes))
		s.logger.Debug("foreign key registered", logging.String("field", field), logging.Int("records", len(s.primary)))
	}

	for id, rec := range s.primary {
		v, has := record.Lookup(rec, field)
		if has && !record.Comparable(v) {
			s.logger.Warn("skipping uncomparable foreign key value",
				logging.String("field", field), logging.Value("id", id))
			has = false
		}
		s.reindexField(id, field, v, has)
	}
}

// HasForeignKey reports whether field is registered.
func (s *ObjectStore) HasForeignKey(field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indexes[field]
	return ok
}

// ForeignKeys returns the registered fields, sorted.
func (s *ObjectStore) ForeignKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make([]string, 0, len(s.indexes))
	for f := range s.indexes {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Remove deletes the record with rec's identifier and all its bucket
// memberships. It reports whether anything was removed; removing an absent
// record is a no-op.
func (s *ObjectStore) Remove(rec record.Record) bool {
	return s.RemoveJournaled(rec, nil)
}

// RemoveJournaled is Remove reporting the removed record to j.
func (s *ObjectStore) RemoveJournaled(rec record.Record, j Journal) bool {
	defer s.observe("remove", time.Now(), nil)

	id, ok := record.Identifier(rec, s.idKey)
	if !ok || !record.Comparable(id) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.primary[id]
	if !exists {
		return false
	}

	for field, idx := range s.indexes {
		if v, had := s.lastIndexed[id][field]; had {
			s.evict(idx, field, v, id)
		}
		if v, has := record.Lookup(rec, field); has && record.Comparable(v) {
			s.evict(idx, field, v, id)
		}
	}
	delete(s.lastIndexed, id)
	delete(s.primary, id)

	if j != nil {
		j.Removed(s, stored)
	}
	s.metrics.SetStoreRecords(s.typeName, len(s.primary))
	return true
}

// UpdateForeignKeysFor moves rec between buckets to match its current field
// values without touching the primary map. Records that are not stored are
// ignored.
func (s *ObjectStore) UpdateForeignKeysFor(rec record.Record) error {
	return s.UpdateForeignKeysForJournaled(rec, nil)
}

// UpdateForeignKeysForJournaled is UpdateForeignKeysFor reporting changed
// fields to j.
func (s *ObjectStore) UpdateForeignKeysForJournaled(rec record.Record, j Journal) (err error) {
	defer s.observe("update_foreign_keys", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, values, err := s.prepare("update_foreign_keys", rec)
	if err != nil {
		return err
	}
	if _, exists := s.primary[id]; !exists {
		return nil
	}

	changed := s.reindex(id, values)
	if j != nil && len(changed) > 0 {
		j.Reindexed(s, rec, changed)
	}
	return nil
}

// All returns every stored record. Order is unspecified.
func (s *ObjectStore) All() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]record.Record, 0, len(s.primary))
	for _, rec := range s.primary {
		out = append(out, rec)
	}
	return out
}

// IDs returns every stored identifier. Order is unspecified.
func (s *ObjectStore) IDs() []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]any, 0, len(s.primary))
	for id := range s.primary {
		out = append(out, id)
	}
	return out
}

// Len returns the number of stored records.
func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.primary)
}

// Clear drops every record and bucket. Registered foreign keys stay
// registered.
func (s *ObjectStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.primary = make(map[any]record.Record)
	s.lastIndexed = make(map[any]map[string]any)
	for field := range s.indexes {
		s.indexes[field] = make(map[any]*bucket)
	}
	s.metrics.SetStoreRecords(s.typeName, 0)
}

// observe records operation metrics. errp may be nil for operations that
// cannot fail.
func (s *ObjectStore) observe(op string, start time.Time, errp *error) {
	if s.metrics == nil {
		return
	}
	status := metrics.StatusSuccess
	if errp != nil && *errp != nil {
		status = metrics.StatusError
	}
	s.metrics.RecordStoreOperation(s.typeName, op, status, time.Since(start))
}

// sameRecord reports whether a and b are the same object. Values of
// uncomparable dynamic types are never considered the same.
func sameRecord(a, b record.Record) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.ValueOf(a).Comparable() && a == b
}
