package payment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/domain"
	"github.com/machinehub/payments-api/internal/observability/telemetry"
	"github.com/machinehub/payments-api/internal/ports"
)

const tracerName = "github.com/machinehub/payments-api/internal/service/payment"

// SubjectIntentCreated is the event subject for newly created payment intents.
const SubjectIntentCreated = "payments.intent.created"

const (
	opCreatePaymentIntent   = "create_payment_intent"
	opCreateCheckoutSession = "create_checkout_session"
)

// Config holds payment service configuration
type Config struct {
	DefaultCurrency    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

// Service implements ports.PaymentService
type Service struct {
	config    Config
	gateway   ports.PaymentGateway
	publisher ports.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewService creates a new payment service. publisher may be nil.
func NewService(config Config, gateway ports.PaymentGateway, publisher ports.EventPublisher, log *zap.Logger) *Service {
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = domain.DefaultCurrency
	}
	config.DefaultCurrency = domain.NormalizeCurrency(config.DefaultCurrency)

	return &Service{
		config:    config,
		gateway:   gateway,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// CreatePaymentIntent validates req, asks the processor for a new payment
// intent with automatic payment methods, and returns its client secret.
// Every call creates a new intent; nothing is deduplicated or retried.
func (s *Service) CreatePaymentIntent(ctx context.Context, caller *domain.Caller, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PaymentService.CreatePaymentIntent")
	defer span.End()

	if caller == nil {
		caller = domain.AnonymousCaller()
	}

	if err := domain.Validate(req); err != nil {
		s.reject(opCreatePaymentIntent, err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	currency := s.currency(req.Currency)
	span.SetAttributes(
		attribute.Int64("payment.amount", req.Amount),
		attribute.String("payment.currency", currency),
	)

	intent, err := s.gateway.CreatePaymentIntent(ctx, domain.IntentParams{
		Amount:                  req.Amount,
		Currency:                currency,
		AutomaticPaymentMethods: true,
		Metadata:                metadataFor(ctx, caller),
	})
	if err != nil {
		upErr := domain.NewUpstreamError(opCreatePaymentIntent, err)
		s.upstreamFailed(upErr, caller,
			zap.Int64("amount", req.Amount),
			zap.String("currency", currency),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "processor call failed")
		return nil, upErr
	}

	telemetry.PaymentRequestsTotal.WithLabelValues(opCreatePaymentIntent, telemetry.OutcomeSuccess).Inc()
	telemetry.PaymentAmountMinorUnits.WithLabelValues(currency).Add(float64(req.Amount))
	span.SetAttributes(attribute.String("payment.intent_id", intent.ID))

	s.log.Info("Payment intent issued",
		zap.String("payment_intent_id", intent.ID),
		zap.String("user_id", caller.UserID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", currency),
	)

	s.publishIntentCreated(ctx, caller, intent, req.Amount, currency)

	return &domain.PaymentIntentResponse{ClientSecret: intent.ClientSecret}, nil
}

// CreateCheckoutSession creates a hosted checkout page for a single product.
func (s *Service) CreateCheckoutSession(ctx context.Context, caller *domain.Caller, req domain.CheckoutSessionRequest) (*domain.CheckoutSessionResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PaymentService.CreateCheckoutSession")
	defer span.End()

	if caller == nil {
		caller = domain.AnonymousCaller()
	}

	if err := domain.Validate(req); err != nil {
		s.reject(opCreateCheckoutSession, err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	currency := s.currency(req.Currency)
	session, err := s.gateway.CreateCheckoutSession(ctx, domain.CheckoutParams{
		ProductName: req.ProductName,
		Amount:      req.Amount,
		Currency:    currency,
		Quantity:    1,
		SuccessURL:  s.config.CheckoutSuccessURL,
		CancelURL:   s.config.CheckoutCancelURL,
		Metadata:    metadataFor(ctx, caller),
	})
	if err != nil {
		upErr := domain.NewUpstreamError(opCreateCheckoutSession, err)
		s.upstreamFailed(upErr, caller,
			zap.String("product_name", req.ProductName),
			zap.Int64("amount", req.Amount),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "processor call failed")
		return nil, upErr
	}

	telemetry.PaymentRequestsTotal.WithLabelValues(opCreateCheckoutSession, telemetry.OutcomeSuccess).Inc()

	s.log.Info("Checkout session issued",
		zap.String("checkout_session_id", session.ID),
		zap.String("user_id", caller.UserID),
	)

	return &domain.CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}

func (s *Service) currency(requested string) string {
	if requested == "" {
		return s.config.DefaultCurrency
	}
	return domain.NormalizeCurrency(requested)
}

func (s *Service) reject(op string, err error) {
	telemetry.PaymentRequestsTotal.WithLabelValues(op, telemetry.OutcomeInvalid).Inc()
	s.log.Debug("Rejected invalid payment request", zap.String("operation", op), zap.Error(err))
}

func (s *Service) upstreamFailed(err *domain.UpstreamError, caller *domain.Caller, fields ...zap.Field) {
	outcome := telemetry.OutcomeUpstream
	if err.Kind == domain.UpstreamUnavailable {
		outcome = telemetry.OutcomeUnavailable
	}
	telemetry.PaymentRequestsTotal.WithLabelValues(err.Op, outcome).Inc()

	fields = append(fields,
		zap.String("operation", err.Op),
		zap.String("user_id", caller.UserID),
		zap.Error(err.Err),
	)
	s.log.Error("Payment processor call failed", fields...)
}

// publishIntentCreated is best effort: the intent already exists upstream.
func (s *Service) publishIntentCreated(ctx context.Context, caller *domain.Caller, intent *domain.PaymentIntent, amount int64, currency string) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(domain.IntentCreatedEvent{
		ID:        uuid.NewString(),
		IntentID:  intent.ID,
		Amount:    amount,
		Currency:  currency,
		UserID:    caller.UserID,
		RequestID: domain.RequestIDFrom(ctx),
		CreatedAt: s.now().UTC(),
	})
	if err == nil {
		err = s.publisher.Publish(SubjectIntentCreated, data)
	}
	if err != nil {
		telemetry.EventPublishFailures.WithLabelValues(SubjectIntentCreated).Inc()
		s.log.Warn("Failed to publish intent event",
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err),
		)
	}
}

func metadataFor(ctx context.Context, caller *domain.Caller) map[string]string {
	md := map[string]string{}
	if caller != nil && caller.UserID != "" {
		md["user_id"] = caller.UserID
	}
	if id := domain.RequestIDFrom(ctx); id != "" {
		md["request_id"] = id
	}
	return md
}
