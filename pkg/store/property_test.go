package store

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// applyOp decodes n into one store operation on a small id and value space
// so that sequences collide often: kind 0 stores a new object, 1 mutates the
// stored object and stores it again, 2 mutates it and resyncs its indexes,
// 3 removes it. Value 3 means nil.
func applyOp(s *ObjectStore, n int) error {
	kind := n % 4
	id := (n / 4) % 5
	var val any
	if v := (n / 20) % 4; v != 3 {
		val = v
	}

	switch kind {
	case 0:
		return s.Store(&order{ID: id, CustomerID: val, Region: val})
	case 1, 2:
		rec, ok := s.Get(id)
		if !ok {
			return s.Store(&order{ID: id, CustomerID: val})
		}
		o := rec.(*order)
		_ = o.SetField("customer_id", val)
		if kind == 1 {
			return s.Store(o)
		}
		return s.UpdateForeignKeysFor(o)
	default:
		s.Remove(&order{ID: id})
		return nil
	}
}

func TestIndexInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("every op sequence keeps buckets consistent", prop.ForAll(
		func(ops []int) bool {
			s := newOrderStore(t)
			s.RegisterForeignKey("customer_id")

			for i, n := range ops {
				if i == len(ops)/2 {
					s.RegisterForeignKey("region")
				}
				if err := applyOp(s, n); err != nil {
					t.Logf("op %d (%d): %v", i, n, err)
					return false
				}
				if err := checkInvariants(s); err != nil {
					t.Logf("after op %d (%d): %v", i, n, err)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 79)),
	))

	properties.Property("lookups match a scan of stored records", prop.ForAll(
		func(ops []int) bool {
			s := newOrderStore(t)
			s.RegisterForeignKey("customer_id")
			for _, n := range ops {
				if err := applyOp(s, n); err != nil {
					return false
				}
			}

			for v := 0; v < 3; v++ {
				want := map[int]bool{}
				for _, rec := range s.All() {
					if cid, _ := rec.Field("customer_id"); cid == v {
						want[rec.(*order).ID] = true
					}
				}
				got := s.GetWithForeignKey("customer_id", v)
				if len(got) != len(want) {
					return false
				}
				for _, rec := range got {
					if !want[rec.(*order).ID] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 79)),
	))

	properties.Property("remove is idempotent", prop.ForAll(
		func(ops []int, id int) bool {
			s := newOrderStore(t)
			s.RegisterForeignKey("customer_id")
			for _, n := range ops {
				_ = applyOp(s, n)
			}
			before := s.Len()
			_, stored := s.Get(id)

			first := s.Remove(&order{ID: id})
			second := s.Remove(&order{ID: id})
			if first != stored || second {
				return false
			}
			if stored && s.Len() != before-1 {
				return false
			}
			return checkInvariants(s) == nil
		},
		gen.SliceOf(gen.IntRange(0, 79)),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
