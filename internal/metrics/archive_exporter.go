package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exporterFetchTailTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landregistry",
		Subsystem: "archive_exporter",
		Name:      "fetch_tail_total",
		Help:      "Count of attempts to fetch the highest archived sequence.",
	}, []string{"status"})

	exporterFetchTailDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "landregistry",
		Subsystem: "archive_exporter",
		Name:      "fetch_tail_duration_seconds",
		Help:      "Duration of fetching the highest archived sequence.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	exporterExportBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landregistry",
		Subsystem: "archive_exporter",
		Name:      "export_batch_total",
		Help:      "Count of exported batches.",
	}, []string{"status"})

	exporterExportBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "landregistry",
		Subsystem: "archive_exporter",
		Name:      "export_batch_duration_seconds",
		Help:      "Duration of exporting a batch of blocks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	exporterExportBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "landregistry",
		Subsystem: "archive_exporter",
		Name:      "export_batch_size",
		Help:      "Number of blocks exported per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{})
)

// ArchiveExporter observes the archive export loop.
type ArchiveExporter struct{}

func NewArchiveExporter() *ArchiveExporter {
	return &ArchiveExporter{}
}

func (ArchiveExporter) ObserveFetchTail(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	exporterFetchTailTotal.WithLabelValues(status).Inc()
	exporterFetchTailDuration.WithLabelValues(status).
		Observe(time.Since(started).Seconds())
}

func (ArchiveExporter) ObserveExportBatch(err error, blocks int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	exporterExportBatchTotal.WithLabelValues(status).Inc()
	exporterExportBatchDuration.WithLabelValues(status).
		Observe(time.Since(started).Seconds())
	exporterExportBatchSize.WithLabelValues().Observe(float64(blocks))
}
