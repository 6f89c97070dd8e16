package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/store"
	"github.com/dd0wney/cluso-memstore/pkg/txn"
)

var regions = []string{"eu", "us", "apac"}

var errAbandoned = errors.New("checkout abandoned")

type workload struct {
	manager      *txn.Manager
	logger       logging.Logger
	workers      int
	ops          int
	customers    int
	rollbackRate float64
	seed         uint64

	nextOrder atomic.Int64
	outcomes  [3]atomic.Int64
}

type summary struct {
	Committed  int64                       `json:"committed"`
	RolledBack int64                       `json:"rolled_back"`
	Failed     int64                       `json:"failed"`
	Stores     map[string]store.Statistics `json:"stores"`
}

func (w *workload) run(ctx context.Context) (summary, error) {
	if err := w.seedCustomers(ctx); err != nil {
		return summary{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	for id := 0; id < w.workers; id++ {
		rng := rand.New(rand.NewPCG(w.seed, uint64(id)))
		g.Go(func() error { return w.worker(ctx, id, rng) })
	}
	if err := g.Wait(); err != nil {
		return summary{}, err
	}

	if err := w.verify(); err != nil {
		return summary{}, err
	}

	return summary{
		Committed:  w.outcomes[txn.Committed].Load(),
		RolledBack: w.outcomes[txn.RolledBack].Load(),
		Failed:     w.outcomes[txn.Failed].Load(),
		Stores:     w.manager.MainStore().Statistics(),
	}, nil
}

func (w *workload) seedCustomers(ctx context.Context) error {
	_, err := w.manager.Transaction(ctx, txn.Options{}, func(ctx context.Context, tx *txn.Transaction) error {
		for i := 0; i < w.customers; i++ {
			c := &Customer{
				Email:  customerEmail(i),
				Name:   fmt.Sprintf("Customer %d", i),
				Region: regions[i%len(regions)],
			}
			if err := tx.Store(c); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (w *workload) worker(ctx context.Context, id int, rng *rand.Rand) error {
	log := w.logger.With(logging.Int("worker", id))
	for i := 0; i < w.ops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := w.manager.Transaction(ctx, txn.Options{}, func(ctx context.Context, tx *txn.Transaction) error {
			return w.checkout(ctx, tx, rng)
		})
		w.outcomes[res.Outcome].Add(1)
		if err != nil {
			return fmt.Errorf("worker %d op %d: %w", id, i, err)
		}
		if res.UndoErr != nil {
			log.Warn("rollback incomplete", logging.Error(res.UndoErr))
		}
	}
	log.Debug("worker done", logging.Int("ops", w.ops))
	return nil
}

// checkout places an order, optionally reassigns an existing one inside a
// nested transaction, and abandons the whole thing at the configured rate.
func (w *workload) checkout(ctx context.Context, tx *txn.Transaction, rng *rand.Rand) error {
	o := &Order{
		ID:            int(w.nextOrder.Add(1)),
		CustomerEmail: customerEmail(rng.IntN(w.customers)),
		Status:        "placed",
	}
	if err := tx.Store(o); err != nil {
		return err
	}

	if rng.IntN(2) == 0 {
		target := customerEmail(rng.IntN(w.customers))
		_, err := w.manager.Transaction(ctx, txn.Options{}, func(ctx context.Context, child *txn.Transaction) error {
			if err := o.SetField("customer_email", target); err != nil {
				return err
			}
			if err := w.manager.UpdateForeignKeysFor(ctx, o); err != nil {
				return err
			}
			if rng.Float64() < w.rollbackRate {
				return txn.Rollback(errAbandoned)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if rng.Float64() < w.rollbackRate {
		return txn.Rollback(errAbandoned)
	}
	return nil
}

// verify checks that every order is found through its customer's bucket.
func (w *workload) verify() error {
	ms := w.manager.MainStore()
	orders := store.For[*Order](ms)

	indexed := 0
	for i := 0; i < w.customers; i++ {
		email := customerEmail(i)
		for _, o := range store.Where[*Order](ms, "customer_email", email) {
			if v, _ := o.Field("customer_email"); v != email {
				return fmt.Errorf("order %d indexed under %s but belongs to %v", o.ID, email, v)
			}
			indexed++
		}
	}
	if indexed != orders.Len() {
		return fmt.Errorf("%d orders stored but %d indexed", orders.Len(), indexed)
	}
	return nil
}

func customerEmail(i int) string {
	return fmt.Sprintf("customer-%d@example.com", i)
}
