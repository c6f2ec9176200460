// Package metrics exposes pipeline activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.PipelineMetrics = (*Metrics)(nil)

const namespace = "lectern"

// Config configures the metrics registry.
type Config struct {
	// EnableDefaultCollectors adds Go runtime and process collectors.
	EnableDefaultCollectors bool
}

// Metrics owns an isolated Prometheus registry and the pipeline collectors.
type Metrics struct {
	// Registry is where all lectern metrics are registered.
	Registry *prometheus.Registry

	reindexTotal      *prometheus.CounterVec
	reindexDuration   prometheus.Histogram
	chunksWritten     prometheus.Counter
	embeddingDuration *prometheus.HistogramVec
	askTotal          *prometheus.CounterVec
	askDuration       *prometheus.HistogramVec
}

// New creates the registry and registers the pipeline collectors.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		reindexTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reindex_total",
			Help:      "Reindex runs by outcome.",
		}, []string{"outcome"}),
		reindexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reindex_duration_seconds",
			Help:      "Wall time of a reindex including embedding.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		chunksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_written_total",
			Help:      "Chunks written by successful reindexes.",
		}),
		embeddingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_duration_seconds",
			Help:      "Duration of single embedding calls by status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		askTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ask_total",
			Help:      "Answered questions by method.",
		}, []string{"method"}),
		askDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_duration_seconds",
			Help:      "Time to answer a question by method.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"method"}),
	}

	registry.MustRegister(
		m.reindexTotal,
		m.reindexDuration,
		m.chunksWritten,
		m.embeddingDuration,
		m.askTotal,
		m.askDuration,
	)

	if cfg.EnableDefaultCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	return m
}

// ObserveReindex records a finished reindex.
func (m *Metrics) ObserveReindex(outcome string, chunks int, elapsed time.Duration) {
	m.reindexTotal.WithLabelValues(outcome).Inc()
	m.reindexDuration.Observe(elapsed.Seconds())
	if chunks > 0 {
		m.chunksWritten.Add(float64(chunks))
	}
}

// ObserveEmbedding records one embedding call.
func (m *Metrics) ObserveEmbedding(elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.embeddingDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveAsk records an answered question.
func (m *Metrics) ObserveAsk(method string, elapsed time.Duration) {
	m.askTotal.WithLabelValues(method).Inc()
	m.askDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
