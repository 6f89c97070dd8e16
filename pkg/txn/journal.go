package txn

import (
	"fmt"
	"maps"

	"github.com/dd0wney/cluso-memstore/pkg/record"
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

// undoEntry inverts one applied store mutation. apply uses the unjournaled
// store methods so undoing never records further entries.
type undoEntry struct {
	op    string
	store *store.ObjectStore
	apply func() error
}

// recorder adapts a Transaction to store.Journal. Its methods run under the
// ObjectStore lock.
type recorder struct {
	tx *Transaction
}

var _ store.Journal = recorder{}

func (r recorder) Inserted(s *store.ObjectStore, rec record.Record) {
	r.tx.push(undoEntry{op: "insert", store: s, apply: func() error {
		s.Remove(rec)
		return nil
	}})
}

func (r recorder) Replaced(s *store.ObjectStore, prior, _ record.Record) {
	r.tx.push(undoEntry{op: "replace", store: s, apply: func() error {
		return s.Store(prior)
	}})
}

func (r recorder) Reindexed(s *store.ObjectStore, rec record.Record, prior map[string]any) {
	prior = maps.Clone(prior)
	r.tx.push(undoEntry{op: "reindex", store: s, apply: func() error {
		setter, ok := rec.(record.FieldSetter)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFieldSetter, s.TypeName())
		}
		for field, v := range prior {
			if err := setter.SetField(field, v); err != nil {
				return fmt.Errorf("restore %s.%s: %w", s.TypeName(), field, err)
			}
		}
		return s.UpdateForeignKeysFor(rec)
	}})
}

func (r recorder) Removed(s *store.ObjectStore, rec record.Record) {
	r.tx.push(undoEntry{op: "remove", store: s, apply: func() error {
		return s.Store(rec)
	}})
}
