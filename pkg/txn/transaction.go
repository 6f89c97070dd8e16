package txn

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/record"
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

// Transaction states and events.
const (
	StateOpen       = "open"
	StateCommitted  = "committed"
	StateRolledBack = "rolled_back"

	eventCommit   = "commit"
	eventRollback = "rollback"
)

// Transaction is one open, committed or rolled back unit of work. Mutations
// made through it are visible in the shared store immediately.
type Transaction struct {
	id      string
	kind    Kind
	parent  *Transaction
	depth   int
	manager *Manager
	started time.Time
	logger  logging.Logger

	// gate is held shared by writes and exclusively by Commit and Rollback,
	// so a write never lands in a journal that was already handed on.
	gate sync.RWMutex

	mu      sync.Mutex
	state   *fsm.FSM
	journal []undoEntry
}

func newTransaction(m *Manager, id string, parent *Transaction) *Transaction {
	tx := &Transaction{
		id:      id,
		kind:    Root,
		parent:  parent,
		manager: m,
		started: time.Now(),
	}
	if parent != nil {
		tx.kind = Child
		tx.depth = parent.depth + 1
	}
	tx.logger = m.logger.With(logging.TxID(id), logging.String("kind", tx.kind.String()), logging.Int("depth", tx.depth))

	tx.state = fsm.NewFSM(
		StateOpen,
		fsm.Events{
			{Name: eventCommit, Src: []string{StateOpen}, Dst: StateCommitted},
			{Name: eventRollback, Src: []string{StateOpen}, Dst: StateRolledBack},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				tx.logger.Debug("transaction state changed",
					logging.String("from", e.Src),
					logging.String("to", e.Dst))
			},
		},
	)
	return tx
}

// ID returns the transaction's unique id.
func (tx *Transaction) ID() string { return tx.id }

// Kind reports whether tx is a root or a child.
func (tx *Transaction) Kind() Kind { return tx.kind }

// Parent returns the enclosing transaction, nil for a root.
func (tx *Transaction) Parent() *Transaction { return tx.parent }

// Depth is 0 for a root and one more than its parent for a child.
func (tx *Transaction) Depth() int { return tx.depth }

// State returns StateOpen, StateCommitted or StateRolledBack.
func (tx *Transaction) State() string { return tx.state.Current() }

// IsOpen reports whether tx accepts mutations.
func (tx *Transaction) IsOpen() bool { return tx.state.Is(StateOpen) }

// JournalLen returns the number of undo entries held, including entries
// adopted from committed children.
func (tx *Transaction) JournalLen() int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return len(tx.journal)
}

// Store stores rec in the manager's MainStore and records how to undo it.
func (tx *Transaction) Store(rec record.Record) error {
	tx.gate.RLock()
	defer tx.gate.RUnlock()
	if err := tx.checkOpen("store"); err != nil {
		return err
	}
	return tx.manager.store.StoreJournaled(rec, recorder{tx})
}

// Remove removes rec and records how to reinsert it.
func (tx *Transaction) Remove(rec record.Record) (bool, error) {
	tx.gate.RLock()
	defer tx.gate.RUnlock()
	if err := tx.checkOpen("remove"); err != nil {
		return false, err
	}
	return tx.manager.store.RemoveJournaled(rec, recorder{tx}), nil
}

// UpdateForeignKeysFor resyncs rec's index entries and records the values it
// was indexed under before.
func (tx *Transaction) UpdateForeignKeysFor(rec record.Record) error {
	tx.gate.RLock()
	defer tx.gate.RUnlock()
	if err := tx.checkOpen("update_foreign_keys"); err != nil {
		return err
	}
	return tx.manager.store.UpdateForeignKeysForJournaled(rec, recorder{tx})
}

// Get reads through to the MainStore. Reads are never journaled.
func (tx *Transaction) Get(t reflect.Type, id any) (record.Record, bool) {
	return tx.manager.store.Get(t, id)
}

// MainStore returns the store the transaction writes to.
func (tx *Transaction) MainStore() *store.MainStore { return tx.manager.store }

func (tx *Transaction) checkOpen(op string) error {
	if !tx.IsOpen() {
		return fmt.Errorf("%s in transaction %s: %w", op, tx.id, ErrTransactionClosed)
	}
	return nil
}

func (tx *Transaction) push(e undoEntry) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.journal = append(tx.journal, e)
}

// transitionError maps an fsm refusal to ErrTransactionClosed.
func (tx *Transaction) transitionError(event string, err error) error {
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%s transaction %s in state %s: %w", event, tx.id, invalid.State, ErrTransactionClosed)
	}
	return fmt.Errorf("%s transaction %s: %w", event, tx.id, err)
}
