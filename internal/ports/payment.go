package ports

import (
	"context"

	"github.com/machinehub/payments-api/internal/domain"
)

// PaymentGateway is the processor-facing side of the service.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error)
	// State reports the upstream circuit state: closed, half-open or open.
	State() string
}

// PaymentService is what the transport calls.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, caller *domain.Caller, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, caller *domain.Caller, req domain.CheckoutSessionRequest) (*domain.CheckoutSessionResponse, error)
}

// EventPublisher delivers serialized events to a subject.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// TokenVerifier turns a bearer token into a caller.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Caller, error)
}
