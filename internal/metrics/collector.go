// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus metrics for workflow stages, review
// outcomes, persistence and the dashboard's HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Stage outcome labels.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusDegraded = "degraded"
)

// Collector owns a private registry so several collectors can coexist in
// one process (tests, embedded servers).
type Collector struct {
	registry *prometheus.Registry

	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec

	papersRetrieved *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	reviewDecisions *prometheus.CounterVec
	storeWrites     *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers all metrics under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.stageRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Workflow stage executions by outcome",
		},
		[]string{"stage", "status"},
	)

	c.stageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Workflow stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)

	c.papersRetrieved = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_retrieved_total",
			Help:      "Papers returned by each literature source",
		},
		[]string{"source"},
	)

	c.recommendations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Scored recommendations by evidence grade",
		},
		[]string{"grade"},
	)

	c.reviewDecisions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_decisions_total",
			Help:      "Physician review decisions",
		},
		[]string{"decision"},
	)

	c.storeWrites = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Session store writes by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordStage records one stage execution.
func (c *Collector) RecordStage(stage, status string, duration time.Duration) {
	c.stageRuns.WithLabelValues(stage, status).Inc()
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPapers adds n papers retrieved from source.
func (c *Collector) RecordPapers(source string, n int) {
	c.papersRetrieved.WithLabelValues(source).Add(float64(n))
}

// RecordRecommendation counts a scored recommendation.
func (c *Collector) RecordRecommendation(grade string) {
	c.recommendations.WithLabelValues(grade).Inc()
}

// RecordReview counts a review decision.
func (c *Collector) RecordReview(decision string) {
	c.reviewDecisions.WithLabelValues(decision).Inc()
}

// RecordStoreWrite counts a store write. kind is "session" or "review".
func (c *Collector) RecordStoreWrite(kind string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	c.storeWrites.WithLabelValues(kind, status).Inc()
}

// RecordHTTPRequest records one dashboard request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// statusCode buckets an HTTP status into its class.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
