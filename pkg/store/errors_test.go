package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"id and field", NewError("store").Type("order").ID(1).Field("customer_id").Cause(ErrUncomparableValue).Err(),
			"store order 1 (field customer_id): value cannot be used as a key"},
		{"id only", NewError("remove").Type("order").ID(1).Cause(ErrNilRecord).Err(),
			"remove order 1: nil record"},
		{"field only", NewError("store").Type("order").Field("id").Cause(ErrMissingIdentifier).Err(),
			"store order (field id): record has no identifier"},
		{"context", NewError("store").Type("order").Context("sku").Cause(ErrTypeMismatch).Err(),
			"store order (sku): record type does not match store"},
		{"bare", NewError("store").Cause(ErrNilRecord).Err(), "store : nil record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestStoreError_Is(t *testing.T) {
	err := NewError("store").Type("order").Field("id").Cause(ErrMissingIdentifier).Err()

	assert.True(t, errors.Is(err, ErrMissingIdentifier))
	assert.False(t, errors.Is(err, ErrNilRecord))
	assert.True(t, IsMissingIdentifier(err))

	var serr *StoreError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "id", serr.Field)
}

func TestErrorBuilder_IndependentErrors(t *testing.T) {
	b := NewError("store").Type("order")
	first := b.ID(1).Err()
	second := b.ID(2).Err()

	assert.Equal(t, 1, first.(*StoreError).ID)
	assert.Equal(t, 2, second.(*StoreError).ID)
}
