// Package metrics exposes the Prometheus instrumentation shared across
// every component binary, grounded on the promauto+Record* pattern
// tomtom215-cartographus uses for its own event-processing metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests handled by this component.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BusMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_bus_messages_published_total",
			Help: "Total number of messages published to the bus, by subject.",
		},
		[]string{"subject"},
	)

	BusMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_bus_messages_consumed_total",
			Help: "Total number of messages consumed from the bus, by subject and outcome.",
		},
		[]string{"subject", "outcome"}, // outcome: ack, nack, duplicate
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_llm_call_duration_seconds",
			Help:    "Duration of LLM collaborator calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"}, // operation: chat, embed, title, extract
	)

	LLMCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_llm_call_errors_total",
			Help: "Total number of failed LLM collaborator calls.",
		},
		[]string{"operation"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_tool_calls_total",
			Help: "Total number of LLM tool-call invocations during generation.",
		},
		[]string{"tool"},
	)

	GeneratorActiveTurns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_generator_active_turns",
			Help: "Current number of in-flight Generator turns.",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)

	HotCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_hot_cache_hits_total",
			Help: "Total number of hot cache lookups, by outcome.",
		},
		[]string{"outcome"}, // hit, miss
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordBusPublish records a successful publish to subject.
func RecordBusPublish(subject string) {
	BusMessagesPublished.WithLabelValues(subject).Inc()
}

// RecordBusConsume records the outcome of handling one message from subject.
func RecordBusConsume(subject, outcome string) {
	BusMessagesConsumed.WithLabelValues(subject, outcome).Inc()
}

// RecordLLMCall records the duration and outcome of one LLM collaborator call.
func RecordLLMCall(operation string, duration time.Duration, err error) {
	LLMCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		LLMCallErrors.WithLabelValues(operation).Inc()
	}
}

// RecordToolCall records one tool-call invocation.
func RecordToolCall(tool string) {
	ToolCallsTotal.WithLabelValues(tool).Inc()
}

// RecordHotCacheLookup records a hot cache hit or miss.
func RecordHotCacheLookup(hit bool) {
	if hit {
		HotCacheHits.WithLabelValues("hit").Inc()
		return
	}
	HotCacheHits.WithLabelValues("miss").Inc()
}
