package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeRepositoryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landregistry",
		Subsystem: "store_repository",
		Name:      "operations_total",
		Help:      "Count of authoritative store operations.",
	}, []string{"operation", "status"})
	storeRepositoryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "landregistry",
		Subsystem: "store_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of authoritative store operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "status"})
)

// StoreRepository tracks metrics for the embedded LevelDB repository.
type StoreRepository struct{}

// NewStoreRepository creates a StoreRepository metrics collector.
func NewStoreRepository() *StoreRepository {
	return &StoreRepository{}
}

// Observe records duration and status of a store operation.
func (m StoreRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	storeRepositoryOperationsTotal.WithLabelValues(operation, status).Inc()
	storeRepositoryOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
