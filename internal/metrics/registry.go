// Package metrics exposes Prometheus instrumentation adapters for the
// registry core, the archive exporter and the storage repositories.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryTransitionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landregistry",
		Subsystem: "registry",
		Name:      "transition_total",
		Help:      "Count of attempted state machine transitions.",
	}, []string{"action", "status"})

	registryTransitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "landregistry",
		Subsystem: "registry",
		Name:      "transition_duration_seconds",
		Help:      "Duration of state machine transitions.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action", "status"})
)

// Registry observes ownership-transfer and document transitions.
type Registry struct{}

func NewRegistry() *Registry {
	return &Registry{}
}

func (Registry) ObserveTransition(action string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	registryTransitionTotal.WithLabelValues(action, status).Inc()
	registryTransitionDuration.WithLabelValues(action, status).
		Observe(time.Since(started).Seconds())
}
