package store

// bucket is an insertion-ordered set of record ids sharing one foreign key
// value.
type bucket struct {
	order   []any
	members map[any]struct{}
}

func newBucket() *bucket {
	return &bucket{members: make(map[any]struct{})}
}

// add inserts id unless already present.
func (b *bucket) add(id any) bool {
	if _, ok := b.members[id]; ok {
		return false
	}
	b.members[id] = struct{}{}
	b.order = append(b.order, id)
	return true
}

// remove deletes id, keeping the order of the remaining ids.
func (b *bucket) remove(id any) bool {
	if _, ok := b.members[id]; !ok {
		return false
	}
	delete(b.members, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

func (b *bucket) has(id any) bool {
	_, ok := b.members[id]
	return ok
}

func (b *bucket) len() int { return len(b.order) }
