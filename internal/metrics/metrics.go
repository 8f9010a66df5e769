// Package metrics holds the Prometheus collectors shared by every Mentora
// service. Collectors register on the default registry at init.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeDuplicate   = "already_submitted"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentora_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	HTTPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
		[]string{"service"},
	)

	// Prediction pipeline
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_predictions_total",
			Help: "Prediction requests by outcome",
		},
		[]string{"service", "outcome"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentora_prediction_duration_seconds",
			Help:    "Time spent assembling, predicting and recommending",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"service"},
	)

	UnknownCategories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_unknown_category_total",
			Help: "Categorical answers outside the trained vocabulary, encoded as the fallback",
		},
		[]string{"service", "field"},
	)

	EstimatedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_estimated_field_total",
			Help: "Fields filled by a physiological estimator instead of user input",
		},
		[]string{"service", "field"},
	)

	ModelLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mentora_model_loaded",
			Help: "1 when the service's artifact bundle is loaded and bound",
		},
		[]string{"service"},
	)

	// Persistence
	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_store_write_failures_total",
			Help: "Predictions returned to the caller but not persisted",
		},
		[]string{"service"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mentora_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_circuit_breaker_requests_total",
			Help: "Calls through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	// Accounts
	AccountEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentora_account_events_total",
			Help: "Account operations by event and result",
		},
		[]string{"event", "result"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(service, method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(service, method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, route).Observe(duration.Seconds())
}

func RecordPrediction(service, outcome string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(service, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeDuplicate {
		PredictionDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

func SetModelLoaded(service string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	ModelLoaded.WithLabelValues(service).Set(v)
}
