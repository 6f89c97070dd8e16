package txn

import (
	"errors"
	"fmt"
)

var (
	// ErrRollback requests a rollback of the innermost transaction without
	// reporting a failure. Return it, or an error from Rollback, from Work.
	ErrRollback = errors.New("transaction rollback requested")

	ErrTransactionClosed = errors.New("transaction is closed")
	ErrNestingTooDeep    = errors.New("transaction nesting too deep")
	ErrParentClosed      = errors.New("parent transaction is closed")
	ErrNotFieldSetter    = errors.New("record cannot restore field values")
)

type rollbackSignal struct {
	cause error
}

// Rollback returns an error that rolls back the current transaction block
// and is reported as Result.Cause rather than returned.
func Rollback(cause error) error {
	return &rollbackSignal{cause: cause}
}

func (s *rollbackSignal) Error() string {
	if s.cause == nil {
		return ErrRollback.Error()
	}
	return fmt.Sprintf("%s: %v", ErrRollback, s.cause)
}

func (s *rollbackSignal) Is(target error) bool { return target == ErrRollback }

func (s *rollbackSignal) Unwrap() error { return s.cause }

// IsRollback reports whether err requests a rollback.
func IsRollback(err error) bool {
	return errors.Is(err, ErrRollback)
}

// rollbackCause extracts the cause given to Rollback, if any.
func rollbackCause(err error) error {
	var sig *rollbackSignal
	if errors.As(err, &sig) {
		return sig.cause
	}
	return nil
}
