package store

import "sort"

// IndexStatistics describes one foreign key index.
type IndexStatistics struct {
	Field              string
	UniqueValues       int
	TotalEntries       int
	AvgEntriesPerValue float64
}

// Statistics describes one ObjectStore.
type Statistics struct {
	Type    string
	IDKey   string
	Records int
	Indexes []IndexStatistics
}

// Statistics returns record and index counts. Indexes are sorted by field.
func (s *ObjectStore) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Statistics{
		Type:    s.typeName,
		IDKey:   s.idKey,
		Records: len(s.primary),
		Indexes: make([]IndexStatistics, 0, len(s.indexes)),
	}
	for field, idx := range s.indexes {
		total := 0
		for _, b := range idx {
			total += b.len()
		}
		st.Indexes = append(st.Indexes, IndexStatistics{
			Field:              field,
			UniqueValues:       len(idx),
			TotalEntries:       total,
			AvgEntriesPerValue: float64(total) / float64(max(len(idx), 1)),
		})
	}
	sort.Slice(st.Indexes, func(i, j int) bool { return st.Indexes[i].Field < st.Indexes[j].Field })
	return st
}
