package payment

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/observability/telemetry"
)

func newBreaker(name string, s BreakerSettings, log *zap.Logger) *gobreaker.CircuitBreaker {
	minRequests := s.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	threshold := s.FailureThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	telemetry.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isHealthyResponse,
	})
}

// isHealthyResponse treats processor-declared request errors (bad card,
// invalid parameters) as a healthy upstream. Network failures, 5xx, auth
// and rate-limit responses count against the breaker.
func isHealthyResponse(err error) bool {
	if err == nil {
		return true
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}

	switch stripeErr.HTTPStatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500
}
