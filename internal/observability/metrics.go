// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	PipelineFailures  *prometheus.CounterVec
	TradesProcessed   prometheus.Counter
	UsersScored       prometheus.Counter
	PredictionsTotal  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Storage metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a new Metrics instance registered on reg.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "trader_classifier"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of prediction runs by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Prediction run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		PipelineFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Total number of failed prediction runs by stage",
		}, []string{"stage"}),
		TradesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "trades_processed_total",
			Help:      "Total number of trade records aggregated",
		}),
		UsersScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "users_scored_total",
			Help:      "Total number of users that received a prediction",
		}),
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "predictions_total",
			Help:      "Total number of predictions by class",
		}, []string{"class"}),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path and status code",
		}, []string{"path", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		// Storage metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Storage call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of failed storage calls",
		}, []string{"store", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful prediction run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPipelineRun records a finished prediction run.
func (m *Metrics) RecordPipelineRun(status string, durationSeconds float64) {
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordPipelineFailure counts a run that failed at stage.
func (m *Metrics) RecordPipelineFailure(stage string) {
	m.PipelineFailures.WithLabelValues(stage).Inc()
}

// RecordPredictions counts scored users and their labels by class name.
func (m *Metrics) RecordPredictions(trades int, classes []string) {
	m.TradesProcessed.Add(float64(trades))
	m.UsersScored.Add(float64(len(classes)))
	for _, c := range classes {
		m.PredictionsTotal.WithLabelValues(c).Inc()
	}
}

// RecordDBQuery records storage call metrics.
func (m *Metrics) RecordDBQuery(store, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(path, code string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(seconds)
}
