package embeddings

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records embedding generation telemetry.
type Metrics struct {
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	texts       *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// newMetrics returns the shared embedding metrics. Collectors register
// against the default registry exactly once.
func newMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			generations: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "ragd_embedding_generations_total",
				Help: "Total embedding generation calls.",
			}, []string{"model", "operation", "status"}),
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ragd_embedding_duration_seconds",
				Help:    "Embedding generation latency.",
				Buckets: prometheus.DefBuckets,
			}, []string{"model", "operation"}),
			texts: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "ragd_embedding_texts_total",
				Help: "Total texts embedded.",
			}, []string{"model", "operation"}),
		}
	})
	return metrics
}

func (m *Metrics) recordGeneration(model, operation string, elapsed time.Duration, count int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generations.WithLabelValues(model, operation, status).Inc()
	m.duration.WithLabelValues(model, operation).Observe(elapsed.Seconds())
	if err == nil {
		m.texts.WithLabelValues(model, operation).Add(float64(count))
	}
}
