package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/machinehub/payments-api/internal/domain"
)

// MockPaymentGateway is a mock implementation of ports.PaymentGateway.
// Without overrides every call returns a fresh intent or session.
type MockPaymentGateway struct {
	CreatePaymentIntentFunc   func(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error)
	CreateCheckoutSessionFunc func(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error)
	StateFunc                 func() string

	mu             sync.Mutex
	IntentCalls    []domain.IntentParams
	CheckoutCalls  []domain.CheckoutParams
	createdIntents int
}

func (m *MockPaymentGateway) CreatePaymentIntent(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error) {
	m.mu.Lock()
	m.IntentCalls = append(m.IntentCalls, params)
	m.createdIntents++
	n := m.createdIntents
	m.mu.Unlock()

	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, params)
	}

	id := fmt.Sprintf("pi_mock_%d", n)
	return &domain.PaymentIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%d", id, n),
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
	}, nil
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error) {
	m.mu.Lock()
	m.CheckoutCalls = append(m.CheckoutCalls, params)
	n := len(m.CheckoutCalls)
	m.mu.Unlock()

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	id := fmt.Sprintf("cs_mock_%d", n)
	return &domain.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/c/pay/" + id}, nil
}

func (m *MockPaymentGateway) State() string {
	if m.StateFunc != nil {
		return m.StateFunc()
	}
	return "closed"
}

// IntentCallCount returns how many times CreatePaymentIntent was called
func (m *MockPaymentGateway) IntentCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.IntentCalls)
}

// CheckoutCallCount returns how many times CreateCheckoutSession was called
func (m *MockPaymentGateway) CheckoutCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CheckoutCalls)
}

// MockPaymentService is a mock implementation of ports.PaymentService
type MockPaymentService struct {
	CreatePaymentIntentFunc   func(ctx context.Context, caller *domain.Caller, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error)
	CreateCheckoutSessionFunc func(ctx context.Context, caller *domain.Caller, req domain.CheckoutSessionRequest) (*domain.CheckoutSessionResponse, error)
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, caller *domain.Caller, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error) {
	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, caller, req)
	}
	return &domain.PaymentIntentResponse{ClientSecret: "pi_mock_secret"}, nil
}

func (m *MockPaymentService) CreateCheckoutSession(ctx context.Context, caller *domain.Caller, req domain.CheckoutSessionRequest) (*domain.CheckoutSessionResponse, error) {
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, caller, req)
	}
	return &domain.CheckoutSessionResponse{ID: "cs_mock", URL: "https://checkout.stripe.test/c/pay/cs_mock"}, nil
}

// MockTokenVerifier is a mock implementation of ports.TokenVerifier
type MockTokenVerifier struct {
	VerifyTokenFunc func(ctx context.Context, token string) (*domain.Caller, error)
}

func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (*domain.Caller, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return &domain.Caller{UserID: "user-123"}, nil
}
