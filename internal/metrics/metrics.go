// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Document store metrics
var (
	// StoreOpsTotal tracks document store operations by operation and status
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Total document store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreOpDuration tracks document store operation latency in seconds
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// StoreRetriesTotal tracks retried store calls by operation
	StoreRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_retries_total",
			Help: "Total retried document store calls by operation",
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Cascade metrics
var (
	// CascadeStepsTotal tracks cascade steps by cascade name and status
	CascadeStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_steps_total",
			Help: "Cascade deletion steps executed by cascade and status",
		},
		[]string{"cascade", "status"},
	)
)

// Sentiment metrics
var (
	// ClassifierPredictionsTotal tracks classifier predictions by label
	ClassifierPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_predictions_total",
			Help: "Total classifier predictions by label",
		},
		[]string{"label"},
	)

	// QuantifyCacheHits tracks quantify result cache hits
	QuantifyCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quantify_cache_hits_total",
			Help: "Total quantify result cache hits",
		},
	)

	// QuantifyCacheMisses tracks quantify result cache misses
	QuantifyCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quantify_cache_misses_total",
			Help: "Total quantify result cache misses",
		},
	)

	// QuantifyCacheEvictions tracks expired quantify cache entries removed
	QuantifyCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quantify_cache_evictions_total",
			Help: "Total expired quantify cache entries evicted",
		},
	)

	// QuantifyCacheSize tracks the current number of quantify cache entries
	QuantifyCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantify_cache_size",
			Help: "Current number of quantify cache entries",
		},
	)

	// BiasCorrectionFallbacks tracks corrections abandoned due to a singular rate matrix
	BiasCorrectionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bias_correction_fallbacks_total",
			Help: "Quantify calls that fell back to the raw histogram because the rate matrix was singular",
		},
	)
)
