package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordStoreOperation records one object store operation. A nil registry
// is a no-op so callers need not guard.
func (r *Registry) RecordStoreOperation(recordType, operation, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StoreOperationsTotal.WithLabelValues(recordType, operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetStoreRecords sets the record count gauge for a type.
func (r *Registry) SetStoreRecords(recordType string, n int) {
	if r == nil {
		return
	}
	r.StoreRecords.WithLabelValues(recordType).Set(float64(n))
}

// SetStoresTotal sets the number of known object stores.
func (r *Registry) SetStoresTotal(n int) {
	if r == nil {
		return
	}
	r.StoresTotal.Set(float64(n))
}

// RecordIndexMigration counts a record moving between buckets.
func (r *Registry) RecordIndexMigration(recordType, field string) {
	if r == nil {
		return
	}
	r.IndexMigrationsTotal.WithLabelValues(recordType, field).Inc()
}

// SetForeignKeys sets the number of registered foreign keys for a type.
func (r *Registry) SetForeignKeys(recordType string, n int) {
	if r == nil {
		return
	}
	r.ForeignKeysRegistered.WithLabelValues(recordType).Set(float64(n))
}

// TransactionOpened increments the open transaction gauge.
func (r *Registry) TransactionOpened() {
	if r == nil {
		return
	}
	r.TransactionsOpen.Inc()
}

// RecordTransaction records a finished transaction.
func (r *Registry) RecordTransaction(kind, outcome string, duration time.Duration, journalLen int) {
	if r == nil {
		return
	}
	r.TransactionsOpen.Dec()
	r.TransactionsTotal.WithLabelValues(kind, outcome).Inc()
	r.TransactionDuration.WithLabelValues(kind).Observe(duration.Seconds())
	r.TransactionJournalSize.Observe(float64(journalLen))
}

// RecordUndo counts undo entries applied by a rollback.
func (r *Registry) RecordUndo(n int) {
	if r == nil {
		return
	}
	r.UndoEntriesApplied.Add(float64(n))
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
