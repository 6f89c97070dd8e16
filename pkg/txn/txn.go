// Package txn provides nested transactions over a store.MainStore.
//
// A transaction records an undo entry for every store mutation made through
// it. Committing a child hands its entries to the parent; committing a root
// discards them. Rolling back applies the entries in reverse.
//
// The current transaction travels in a context.Context, so every goroutine
// has its own nesting and the caller's context is never modified.
//
// The implementation is split across:
//   - transaction.go: Transaction struct and store operations
//   - transaction_commit.go: Commit and Rollback
//   - journal.go: undo entries
//   - manager.go: Manager, Begin and the Transaction block
package txn

import "context"

// Kind distinguishes root transactions from nested ones.
type Kind int

const (
	Root Kind = iota
	Child
)

func (k Kind) String() string {
	if k == Child {
		return "child"
	}
	return "root"
}

// Outcome is how a transaction block ended.
type Outcome int

const (
	Committed Outcome = iota
	RolledBack
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options controls how a transaction is opened.
type Options struct {
	// RequiresNew opens a root transaction even when one is current.
	RequiresNew bool
}

// Result describes a finished transaction block.
type Result struct {
	TxID    string
	Kind    Kind
	Outcome Outcome
	// Cause is the rollback cause for RolledBack and the work error for
	// Failed.
	Cause error
	// UndoErr collects undo entries that could not be applied.
	UndoErr error
}

// Work is the body of a transaction block. ctx carries tx as the current
// transaction.
type Work func(ctx context.Context, tx *Transaction) error
