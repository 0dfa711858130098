// Package metrics exposes Prometheus instruments for the ingestion
// pipeline. A nil *Collector is safe to pass around; callers guard
// their observations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	DocumentsRegisteredTotal prometheus.Counter
	DocumentsProcessedTotal  *prometheus.CounterVec
	ProcessingDuration       prometheus.Histogram
	QueueDepth               prometheus.Gauge
	EnqueuedTotal            prometheus.Counter
	RetriesTotal             prometheus.Counter

	ChunkFailuresTotal prometheus.Counter
	ValuesMappedTotal  prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		DocumentsRegisteredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ingest",
			Name:      "documents_registered_total",
			Help:      "Total documents registered for processing.",
		}),

		DocumentsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "documents_processed_total",
			Help:      "Total processing attempts by final outcome.",
		}, []string{"outcome"}),

		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "processing_duration_seconds",
			Help:      "End-to-end document processing latency distribution.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Current number of items waiting in the queue.",
		}),

		EnqueuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Total items accepted into the queue.",
		}),

		RetriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "retries_total",
			Help:      "Total processing retries scheduled after failures.",
		}),

		ChunkFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "extract",
			Name:      "chunk_failures_total",
			Help:      "Total text chunks whose completion call failed.",
		}),

		ValuesMappedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "mapping",
			Name:      "values_mapped_total",
			Help:      "Total extracted values resolved to catalog parameters.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
