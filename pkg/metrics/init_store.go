package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "memstore_store_operations_total",
			Help: "Total number of object store operations",
		},
		[]string{"type", "operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memstore_store_operation_duration_seconds",
			Help:    "Object store operation duration in seconds, lock wait included",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"operation"},
	)

	r.StoreRecords = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "memstore_store_records",
			Help: "Number of records held per record type",
		},
		[]string{"type"},
	)

	r.StoresTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "memstore_stores_total",
			Help: "Number of per-type object stores known to the main store",
		},
	)

	r.IndexMigrationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "memstore_index_migrations_total",
			Help: "Records moved between foreign key buckets after a field value change",
		},
		[]string{"type", "field"},
	)

	r.ForeignKeysRegistered = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "memstore_foreign_keys_registered",
			Help: "Number of registered foreign key indexes per record type",
		},
		[]string{"type"},
	)
}
