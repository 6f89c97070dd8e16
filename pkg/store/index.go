package store

import (
	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/record"
)

// Index maintenance. Every helper here expects s.mu to be held.

// prepare validates rec for a mutating operation and reads the current value
// of every registered field. Absent values are left out of the returned map.
// Nothing is mutated, so a failed prepare leaves the store untouched.
func (s *ObjectStore) prepare(op string, rec record.Record) (any, map[string]any, error) {
	if record.IsAbsent(rec) {
		return nil, nil, NewError(op).Type(s.typeName).Cause(ErrNilRecord).Err()
	}
	if t := record.TypeOf(rec); t != s.typ {
		return nil, nil, NewError(op).Type(s.typeName).Context(record.TypeName(t)).Cause(ErrTypeMismatch).Err()
	}

	id, ok := record.Identifier(rec, s.idKey)
	if !ok {
		return nil, nil, NewError(op).Type(s.typeName).Field(s.idKey).Cause(ErrMissingIdentifier).Err()
	}
	if !record.Comparable(id) {
		return nil, nil, NewError(op).Type(s.typeName).Field(s.idKey).Cause(ErrUncomparableValue).Err()
	}

	values := make(map[string]any, len(s.indexes))
	for field := range s.indexes {
		v, has := record.Lookup(rec, field)
		if !has {
			continue
		}
		if !record.Comparable(v) {
			return nil, nil, NewError(op).Type(s.typeName).ID(id).Field(field).Cause(ErrUncomparableValue).Err()
		}
		values[field] = v
	}
	return id, values, nil
}

// reindex brings id's bucket memberships in line with values for every
// registered field. It returns the previously indexed value of each field
// that changed (nil for fields that were not indexed before).
func (s *ObjectStore) reindex(id any, values map[string]any) map[string]any {
	var changed map[string]any
	for field := range s.indexes {
		v, has := values[field]
		old, had, moved := s.reindexField(id, field, v, has)
		if !moved {
			continue
		}
		if changed == nil {
			changed = make(map[string]any)
		}
		if had {
			changed[field] = old
		} else {
			changed[field] = nil
		}
	}
	return changed
}

// reindexField diffs one field against the last indexed snapshot and moves
// id from the old bucket to the new one when they differ.
func (s *ObjectStore) reindexField(id any, field string, v any, has bool) (old any, had, moved bool) {
	old, had = s.lastIndexed[id][field]
	if had == has && (!has || old == v) {
		if has {
			// The snapshot is authoritative; re-adding is a no-op when present.
			s.bucketFor(field, v).add(id)
		}
		return old, had, false
	}

	if had {
		s.evict(s.indexes[field], field, old, id)
	}
	if has {
		s.bucketFor(field, v).add(id)
		s.snapshot(id, field, v)
	} else {
		s.forget(id, field)
	}

	if had {
		s.logger.Debug("index bucket migration",
			logging.Value("id", id),
			logging.String("field", field),
			logging.Value("old", old),
			logging.Value("new", v))
		s.metrics.RecordIndexMigration(s.typeName, field)
	}
	return old, had, true
}

// bucketFor returns the bucket for value in field's index, creating it.
func (s *ObjectStore) bucketFor(field string, value any) *bucket {
	idx := s.indexes[field]
	b, ok := idx[value]
	if !ok {
		b = newBucket()
		idx[value] = b
	}
	return b
}

// evict removes id from value's bucket and drops the bucket once empty.
func (s *ObjectStore) evict(idx map[any]*bucket, field string, value any, id any) {
	b, ok := idx[value]
	if !ok {
		return
	}
	b.remove(id)
	if b.len() == 0 {
		delete(idx, value)
	}
}

func (s *ObjectStore) snapshot(id any, field string, value any) {
	m, ok := s.lastIndexed[id]
	if !ok {
		m = make(map[string]any)
		s.lastIndexed[id] = m
	}
	m[field] = value
}

func (s *ObjectStore) forget(id any, field string) {
	m, ok := s.lastIndexed[id]
	if !ok {
		return
	}
	delete(m, field)
	if len(m) == 0 {
		delete(s.lastIndexed, id)
	}
}
