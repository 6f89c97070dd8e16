package txn

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

type account struct {
	mu      sync.Mutex
	ID      string
	OwnerID any
}

func (a *account) Field(name string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch name {
	case "id":
		return a.ID, true
	case "owner_id":
		return a.OwnerID, true
	}
	return nil, false
}

func (a *account) SetField(name string, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if name != "owner_id" {
		return fmt.Errorf("account has no settable field %q", name)
	}
	a.OwnerID = value
	return nil
}

func (a *account) setOwner(v any) { _ = a.SetField("owner_id", v) }

// ledger cannot write its fields back.
type ledger struct {
	ID     int
	Branch any
}

func (l *ledger) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "branch":
		return l.Branch, true
	}
	return nil, false
}

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	ms := store.NewMainStore(
		store.WithLogger(logging.NewNopLogger()),
		store.WithForeignKeys("account", "owner_id"),
		store.WithForeignKeys("ledger", "branch"),
	)
	return NewManager(ms, append([]ManagerOption{WithLogger(logging.NewNopLogger())}, opts...)...)
}

func accountIDs(m *Manager, owner any) []string {
	var out []string
	for _, a := range store.Where[*account](m.MainStore(), "owner_id", owner) {
		out = append(out, a.ID)
	}
	return out
}

func hasAccount(m *Manager, id string) bool {
	_, ok := store.Get[*account](m.MainStore(), id)
	return ok
}
