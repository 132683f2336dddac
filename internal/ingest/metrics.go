package ingest

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records ingestion pipeline telemetry.
type Metrics struct {
	queued   prometheus.Counter
	jobs     *prometheus.CounterVec
	duration prometheus.Histogram
	chunks   prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

func newMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			queued: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ragd_ingest_jobs_queued_total",
				Help: "Total jobs accepted onto the ingest queue.",
			}),
			jobs: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "ragd_ingest_jobs_total",
				Help: "Total ingest jobs completed.",
			}, []string{"status"}),
			duration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "ragd_ingest_duration_seconds",
				Help:    "Ingest pipeline latency per document.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			}),
			chunks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ragd_ingest_chunks_indexed_total",
				Help: "Total chunks written to the vector index.",
			}),
		}
	})
	return metrics
}

func (m *Metrics) recordJob(elapsed time.Duration, chunkCount int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobs.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
	if err == nil {
		m.chunks.Add(float64(chunkCount))
	}
}
