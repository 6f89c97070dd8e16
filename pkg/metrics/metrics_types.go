package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all memstore metrics on a private prometheus registry.
type Registry struct {
	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	StoreRecords           *prometheus.GaugeVec
	StoresTotal            prometheus.Gauge
	IndexMigrationsTotal   *prometheus.CounterVec
	ForeignKeysRegistered  *prometheus.GaugeVec

	// Transaction metrics
	TransactionsTotal      *prometheus.CounterVec
	TransactionDuration    *prometheus.HistogramVec
	TransactionsOpen       prometheus.Gauge
	UndoEntriesApplied     prometheus.Counter
	TransactionJournalSize prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialised.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initStoreMetrics()
	r.initTransactionMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
