package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/record"
)

// order is the record type used throughout the store tests.
type order struct {
	mu         sync.Mutex
	ID         int
	CustomerID any
	Region     any
}

func (o *order) Field(name string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch name {
	case "id":
		return o.ID, true
	case "customer_id":
		return o.CustomerID, true
	case "region":
		return o.Region, true
	}
	return nil, false
}

func (o *order) SetField(name string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch name {
	case "customer_id":
		o.CustomerID = value
	case "region":
		o.Region = value
	default:
		return fmt.Errorf("order has no settable field %q", name)
	}
	return nil
}

// sku declares its own identifier field.
type sku struct {
	Code  string
	Brand string
}

func (sku) IDKey() string { return "code" }

func (s sku) Field(name string) (any, bool) {
	switch name {
	case "code":
		return s.Code, true
	case "brand":
		return s.Brand, true
	}
	return nil, false
}

// invoice declares a primary key but no id key.
type invoice struct {
	Number *int
}

func (*invoice) PrimaryKey() string { return "number" }

func (i *invoice) Field(name string) (any, bool) {
	if name == "number" {
		if i.Number == nil {
			return nil, true
		}
		return *i.Number, true
	}
	return nil, false
}

func newTestMainStore(t *testing.T, opts ...Option) *MainStore {
	t.Helper()
	return NewMainStore(append([]Option{WithLogger(logging.NewNopLogger())}, opts...)...)
}

func newOrderStore(t *testing.T) *ObjectStore {
	t.Helper()
	return For[*order](newTestMainStore(t))
}

func ids(recs []record.Record) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.(*order).ID)
	}
	return out
}

// checkInvariants verifies that every stored record sits in exactly the
// bucket matching its current value for each registered field and that no
// bucket references anything else.
func checkInvariants(s *ObjectStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for field, idx := range s.indexes {
		for value, b := range idx {
			if b.len() == 0 {
				return fmt.Errorf("%s: empty bucket %v kept", field, value)
			}
			if len(b.members) != len(b.order) {
				return fmt.Errorf("%s=%v: members/order out of sync", field, value)
			}
			for _, id := range b.order {
				if _, ok := s.primary[id]; !ok {
					return fmt.Errorf("%s=%v: references removed id %v", field, value, id)
				}
				if snap, ok := s.lastIndexed[id][field]; !ok || snap != value {
					return fmt.Errorf("%s=%v: id %v snapshot is %v", field, value, id, snap)
				}
			}
		}

		for id, rec := range s.primary {
			live, has := record.Lookup(rec, field)
			memberships := 0
			for _, b := range idx {
				if b.has(id) {
					memberships++
				}
			}
			if !has {
				if memberships != 0 {
					return fmt.Errorf("%s: id %v has no value but sits in %d buckets", field, id, memberships)
				}
				continue
			}
			if memberships != 1 || idx[live] == nil || !idx[live].has(id) {
				return fmt.Errorf("%s: id %v with value %v sits in %d buckets", field, id, live, memberships)
			}
		}
	}

	for id := range s.lastIndexed {
		if _, ok := s.primary[id]; !ok {
			return fmt.Errorf("snapshot kept for removed id %v", id)
		}
	}
	return nil
}
