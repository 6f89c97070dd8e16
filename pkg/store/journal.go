package store

import "github.com/dd0wney/cluso-memstore/pkg/record"

// Journal receives enough information about each applied mutation to invert
// it. Methods run while the ObjectStore lock is held and must not call back
// into the store.
type Journal interface {
	// Inserted: rec was added under a new identifier.
	Inserted(s *ObjectStore, rec record.Record)
	// Replaced: prior was replaced by a different object with the same id.
	Replaced(s *ObjectStore, prior, rec record.Record)
	// Reindexed: rec moved buckets in place; prior maps each changed field to
	// its previously indexed value (nil when it was not indexed).
	Reindexed(s *ObjectStore, rec record.Record, prior map[string]any)
	// Removed: rec was deleted.
	Removed(s *ObjectStore, rec record.Record)
}
