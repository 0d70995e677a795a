package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bite_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bite_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "route"},
	)

	// Pipeline
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bite_pipeline_outcomes_total",
			Help: "Photo analysis requests by terminal outcome",
		},
		[]string{"outcome"}, // "success", "low_confidence", "upload_error", "analysis_error", "invalid_input", "persist_error"
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bite_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"stage"}, // "compress", "upload", "analyze", "persist"
	)

	ParseFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bite_analysis_parse_fallbacks_total",
			Help: "Completions that could not be parsed into a food analysis",
		},
	)

	OrphanedUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bite_orphaned_uploads_total",
			Help: "Stored photos whose record could not be persisted",
		},
	)

	// Compression
	CompressionRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bite_compression_ratio",
			Help:    "Compressed size divided by original size",
			Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 1.5},
		},
	)

	CompressionAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bite_compression_attempts",
			Help:    "JPEG encodes performed per photo",
			Buckets: []float64{1, 2, 4, 8, 14, 20, 28},
		},
	)

	CompressionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bite_compression_fallbacks_total",
			Help: "Photos stored uncompressed because compression failed",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bite_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bite_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bite_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, started time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}
