package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	PaymentRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machinehub_payment_requests_total",
		Help: "Payment requests handled, by operation and outcome",
	}, []string{"operation", "outcome"})

	PaymentAmountMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machinehub_payment_requested_amount_minor_units_total",
		Help: "Sum of successfully requested amounts in minor units, by currency",
	}, []string{"currency"})

	// Infrastructure metrics
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "machinehub_processor_latency_seconds",
		Help:    "Latency of payment processor calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "machinehub_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machinehub_event_publish_failures_total",
		Help: "Events that could not be published",
	}, []string{"subject"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machinehub_http_requests_total",
		Help: "HTTP requests, by route and status code",
	}, []string{"method", "route", "status"})
)

// Outcome labels
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUpstream    = "upstream_error"
	OutcomeUnavailable = "unavailable"
)
