package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/domain"
	"github.com/machinehub/payments-api/internal/observability/telemetry"
	"github.com/machinehub/payments-api/internal/ports"
)

// StripeConfig configures the Stripe gateway.
type StripeConfig struct {
	SecretKey string
	// APIURL overrides https://api.stripe.com, e.g. for stripe-mock or tests.
	APIURL  string
	Timeout time.Duration
	Breaker BreakerSettings
}

// BreakerSettings tunes the circuit breaker in front of Stripe.
type BreakerSettings struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

type StripeGateway struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewStripeGateway builds a gateway on its own Stripe client; the package-level
// stripe.Key is never touched.
func NewStripeGateway(cfg StripeConfig, log *zap.Logger) (ports.PaymentGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     log.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	g := &StripeGateway{
		api: api,
		log: log,
	}
	if cfg.Breaker.Enabled {
		g.breaker = newBreaker("stripe", cfg.Breaker, log)
	}

	log.Info("Stripe payment gateway initialized",
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("circuit_breaker", cfg.Breaker.Enabled),
	)

	return g, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, in domain.IntentParams) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(in.AutomaticPaymentMethods),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	g.log.Debug("Creating payment intent",
		zap.Int64("amount", in.Amount),
		zap.String("currency", in.Currency),
	)

	pi, err := call(g, "create_payment_intent", func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	g.log.Info("Payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in domain.CheckoutParams) (*domain.CheckoutSession, error) {
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ProductName),
					},
					UnitAmount: stripe.Int64(in.Amount),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := call(g, "create_checkout_session", func() (*stripe.CheckoutSession, error) {
		return g.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	g.log.Info("Checkout session created", zap.String("checkout_session_id", s.ID))

	return &domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) State() string {
	if g.breaker == nil {
		return gobreaker.StateClosed.String()
	}
	return g.breaker.State().String()
}

// call runs fn behind the breaker and records its latency.
func call[T any](g *StripeGateway, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer func() {
		telemetry.UpstreamLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if g.breaker == nil {
		return fn()
	}

	res, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", domain.ErrProcessorUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}
