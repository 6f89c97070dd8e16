package store

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrMissingIdentifier = errors.New("record has no identifier")
	ErrUncomparableValue = errors.New("value cannot be used as a key")
	ErrNilRecord         = errors.New("nil record")
	ErrTypeMismatch      = errors.New("record type does not match store")
)

// StoreError describes a failed store operation.
type StoreError struct {
	Op      string // "store", "remove", "update_foreign_keys"
	Type    string // record type name
	ID      any    // record identifier, if known
	Field   string // id key or foreign key field involved
	Context string // additional context
	Cause   error
}

func (e *StoreError) Error() string {
	switch {
	case e.ID != nil && e.Field != "":
		return fmt.Sprintf("%s %s %v (field %s): %v", e.Op, e.Type, e.ID, e.Field, e.Cause)
	case e.ID != nil:
		return fmt.Sprintf("%s %s %v: %v", e.Op, e.Type, e.ID, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("%s %s (field %s): %v", e.Op, e.Type, e.Field, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Type, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Type, e.Cause)
	}
}

func (e *StoreError) Unwrap() error { return e.Cause }

// Is reports whether target matches the cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder builds a StoreError fluently.
type ErrorBuilder struct {
	err StoreError
}

// NewError starts an error for operation op.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: StoreError{Op: op}}
}

func (b *ErrorBuilder) Type(name string) *ErrorBuilder {
	b.err.Type = name
	return b
}

func (b *ErrorBuilder) ID(id any) *ErrorBuilder {
	b.err.ID = id
	return b
}

func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// IsMissingIdentifier reports whether err was caused by a record without an
// identifier.
func IsMissingIdentifier(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}
