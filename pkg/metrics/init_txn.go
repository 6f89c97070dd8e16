package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTransactionMetrics() {
	r.TransactionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "memstore_transactions_total",
			Help: "Total number of finished transactions",
		},
		[]string{"kind", "outcome"},
	)

	r.TransactionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memstore_transaction_duration_seconds",
			Help:    "Transaction duration from open to commit or rollback",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	r.TransactionsOpen = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "memstore_transactions_open",
			Help: "Transactions currently open",
		},
	)

	r.UndoEntriesApplied = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "memstore_undo_entries_applied_total",
			Help: "Undo journal entries applied during rollbacks",
		},
	)

	r.TransactionJournalSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memstore_transaction_journal_entries",
			Help:    "Undo journal length at the time a transaction finishes",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 1000},
		},
	)
}
