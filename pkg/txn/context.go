package txn

import "context"

type ctxKey struct{}

// Current returns the transaction carried by ctx, or nil.
func Current(ctx context.Context) *Transaction {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(ctxKey{}).(*Transaction)
	return tx
}

// WithTransaction returns a copy of ctx carrying tx as the current
// transaction.
func WithTransaction(ctx context.Context, tx *Transaction) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}
