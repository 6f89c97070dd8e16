package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
)

// Commit closes tx. A child hands its undo entries to its parent, so a later
// parent rollback still undoes them; a root discards them.
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.gate.Lock()
	defer tx.gate.Unlock()
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.IsOpen() {
		return fmt.Errorf("commit transaction %s in state %s: %w", tx.id, tx.State(), ErrTransactionClosed)
	}

	if tx.parent != nil {
		tx.parent.mu.Lock()
		defer tx.parent.mu.Unlock()
		if !tx.parent.IsOpen() {
			return fmt.Errorf("commit transaction %s: %w", tx.id, ErrParentClosed)
		}
	}

	if err := tx.state.Event(context.WithoutCancel(ctx), eventCommit); err != nil {
		return tx.transitionError(eventCommit, err)
	}

	n := len(tx.journal)
	if tx.parent != nil {
		tx.parent.journal = append(tx.parent.journal, tx.journal...)
	}
	tx.journal = nil

	tx.finish(StateCommitted, n)
	return nil
}

// Rollback closes tx and undoes every entry in its journal, newest first.
// Undo failures are logged and joined into the returned error; the
// remaining entries are still applied.
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.gate.Lock()
	defer tx.gate.Unlock()
	tx.mu.Lock()
	if err := tx.state.Event(context.WithoutCancel(ctx), eventRollback); err != nil {
		tx.mu.Unlock()
		return tx.transitionError(eventRollback, err)
	}
	entries := tx.journal
	tx.journal = nil
	tx.mu.Unlock()

	// Undo runs without tx.mu: applying an entry takes ObjectStore locks,
	// and journaled writes take tx.mu under those locks.
	err := tx.undo(entries)
	tx.finish(StateRolledBack, len(entries))
	if err != nil {
		return fmt.Errorf("rollback transaction %s: %w", tx.id, err)
	}
	return nil
}

func (tx *Transaction) undo(entries []undoEntry) error {
	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.apply(); err != nil {
			tx.logger.Warn("undo entry failed",
				logging.Operation(e.op),
				logging.RecordType(e.store.TypeName()),
				logging.Error(err))
			errs = append(errs, err)
		}
	}
	tx.manager.metrics.RecordUndo(len(entries))
	return errors.Join(errs...)
}

func (tx *Transaction) finish(state string, entries int) {
	elapsed := time.Since(tx.started)
	tx.manager.metrics.RecordTransaction(tx.kind.String(), state, elapsed, entries)
	tx.logger.Debug("transaction finished",
		logging.String("state", state),
		logging.Int("journal", entries),
		logging.Latency(elapsed))
}
