package txn

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/metrics"
	"github.com/dd0wney/cluso-memstore/pkg/record"
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

// Manager opens transactions against one MainStore.
type Manager struct {
	store    *store.MainStore
	logger   logging.Logger
	metrics  *metrics.Registry
	maxDepth int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithLogger(l logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(r *metrics.Registry) ManagerOption {
	return func(m *Manager) { m.metrics = r }
}

// WithMaxDepth limits child nesting; a root has depth 0. Zero means no
// limit.
func WithMaxDepth(depth int) ManagerOption {
	return func(m *Manager) { m.maxDepth = depth }
}

// NewManager creates a Manager for ms.
func NewManager(ms *store.MainStore, opts ...ManagerOption) *Manager {
	m := &Manager{store: ms}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrDefault(m.logger).With(logging.Component("txn"))
	return m
}

// MainStore returns the managed store.
func (m *Manager) MainStore() *store.MainStore { return m.store }

// Begin opens a transaction and returns a context carrying it. The
// transaction is a child of Current(ctx) unless opts.RequiresNew is set or
// there is no current transaction. The caller must Commit or Rollback it.
func (m *Manager) Begin(ctx context.Context, opts Options) (context.Context, *Transaction, error) {
	var parent *Transaction
	if !opts.RequiresNew {
		parent = Current(ctx)
	}

	if parent != nil {
		if !parent.IsOpen() {
			return ctx, nil, fmt.Errorf("begin child of %s: %w", parent.id, ErrParentClosed)
		}
		if m.maxDepth > 0 && parent.depth+1 > m.maxDepth {
			return ctx, nil, fmt.Errorf("begin child of %s at depth %d: %w", parent.id, parent.depth+1, ErrNestingTooDeep)
		}
	}

	tx := newTransaction(m, uuid.NewString(), parent)
	m.metrics.TransactionOpened()
	tx.logger.Debug("transaction begun")
	return WithTransaction(ctx, tx), tx, nil
}

// Transaction runs work inside a new transaction.
//
// If work returns nil the transaction commits. If it returns an error
// matching ErrRollback the transaction rolls back and the block reports
// RolledBack with a nil error. Any other error rolls back and is returned
// unchanged with a Failed result. A panic in work rolls back and is
// re-raised.
//
// ctx is never modified; work sees a derived context carrying the new
// transaction.
func (m *Manager) Transaction(ctx context.Context, opts Options, work Work) (Result, error) {
	txCtx, tx, err := m.Begin(ctx, opts)
	if err != nil {
		return Result{Outcome: Failed, Cause: err}, err
	}
	res := Result{TxID: tx.ID(), Kind: tx.Kind()}

	defer func() {
		if p := recover(); p != nil {
			if tx.IsOpen() {
				if rerr := tx.Rollback(ctx); rerr != nil {
					tx.logger.Error("rollback after panic failed", logging.Error(rerr))
				}
			}
			panic(p)
		}
	}()

	werr := work(txCtx, tx)

	// work may have closed tx itself through the low-level API.
	if !tx.IsOpen() {
		return m.closedResult(res, tx, werr)
	}

	switch {
	case werr == nil:
		if cerr := tx.Commit(ctx); cerr != nil {
			res.Outcome, res.Cause = Failed, cerr
			res.UndoErr = tx.Rollback(ctx)
			return res, cerr
		}
		res.Outcome = Committed
		return res, nil

	case IsRollback(werr):
		res.Outcome, res.Cause = RolledBack, rollbackCause(werr)
		res.UndoErr = tx.Rollback(ctx)
		tx.logger.Debug("transaction rolled back on request", logging.Error(res.Cause))
		return res, nil

	default:
		res.Outcome, res.Cause = Failed, werr
		res.UndoErr = tx.Rollback(ctx)
		tx.logger.Debug("transaction rolled back on error", logging.Error(werr))
		return res, werr
	}
}

func (m *Manager) closedResult(res Result, tx *Transaction, werr error) (Result, error) {
	switch {
	case IsRollback(werr):
		res.Outcome, res.Cause = RolledBack, rollbackCause(werr)
		return res, nil
	case werr != nil:
		res.Outcome, res.Cause = Failed, werr
		return res, werr
	case tx.State() == StateCommitted:
		res.Outcome = Committed
	default:
		res.Outcome = RolledBack
	}
	return res, nil
}

// Store stores rec through the current transaction, or directly when ctx
// carries none.
func (m *Manager) Store(ctx context.Context, rec record.Record) error {
	if tx := Current(ctx); tx != nil {
		return tx.Store(rec)
	}
	return m.store.Store(rec)
}

// Remove removes rec through the current transaction, or directly when ctx
// carries none.
func (m *Manager) Remove(ctx context.Context, rec record.Record) (bool, error) {
	if tx := Current(ctx); tx != nil {
		return tx.Remove(rec)
	}
	return m.store.Remove(rec), nil
}

// UpdateForeignKeysFor resyncs rec's indexes through the current
// transaction, or directly when ctx carries none.
func (m *Manager) UpdateForeignKeysFor(ctx context.Context, rec record.Record) error {
	if tx := Current(ctx); tx != nil {
		return tx.UpdateForeignKeysFor(rec)
	}
	return m.store.UpdateForeignKeysFor(rec)
}
