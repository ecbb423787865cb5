package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/domain"
	"github.com/machinehub/payments-api/internal/mocks"
)

var testCaller = &domain.Caller{UserID: "user-123"}

func newTestService(gw *mocks.MockPaymentGateway, pub *mocks.MockMessageQueue) *Service {
	cfg := Config{
		DefaultCurrency:    "usd",
		CheckoutSuccessURL: "https://example.com/success",
		CheckoutCancelURL:  "https://example.com/cancel",
	}
	if pub == nil {
		return NewService(cfg, gw, nil, zap.NewNop())
	}
	return NewService(cfg, gw, pub, zap.NewNop())
}

func TestCreatePaymentIntent_ForwardsExactValues(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		CreatePaymentIntentFunc: func(ctx context.Context, p domain.IntentParams) (*domain.PaymentIntent, error) {
			return &domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_opaque"}, nil
		},
	}
	svc := newTestService(gw, nil)

	resp, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 2500, Currency: "usd"})

	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_opaque", resp.ClientSecret)
	require.Equal(t, 1, gw.IntentCallCount())

	call := gw.IntentCalls[0]
	assert.Equal(t, int64(2500), call.Amount)
	assert.Equal(t, "usd", call.Currency)
	assert.True(t, call.AutomaticPaymentMethods)
	assert.Equal(t, "user-123", call.Metadata["user_id"])
}

func TestCreatePaymentIntent_DefaultCurrency(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 1500})

	require.NoError(t, err)
	require.Equal(t, 1, gw.IntentCallCount())
	assert.Equal(t, "usd", gw.IntentCalls[0].Currency)
}

func TestCreatePaymentIntent_ConfiguredDefaultCurrency(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := NewService(Config{DefaultCurrency: "EUR"}, gw, nil, zap.NewNop())

	_, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 1500})

	require.NoError(t, err)
	assert.Equal(t, "eur", gw.IntentCalls[0].Currency)
}

func TestCreatePaymentIntent_NormalizesCurrency(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 999, Currency: "GBP"})

	require.NoError(t, err)
	assert.Equal(t, "gbp", gw.IntentCalls[0].Currency)
}

func TestCreatePaymentIntent_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		req   domain.PaymentIntentRequest
		field string
	}{
		{"zero amount", domain.PaymentIntentRequest{Amount: 0}, "amount"},
		{"negative amount", domain.PaymentIntentRequest{Amount: -500}, "amount"},
		{"unknown currency", domain.PaymentIntentRequest{Amount: 100, Currency: "zzz"}, "currency"},
		{"malformed currency", domain.PaymentIntentRequest{Amount: 100, Currency: "dollars"}, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mocks.MockPaymentGateway{}
			svc := newTestService(gw, nil)

			resp, err := svc.CreatePaymentIntent(context.Background(), testCaller, tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Zero(t, gw.IntentCallCount(), "no upstream call expected")
		})
	}
}

func TestCreatePaymentIntent_UpstreamFailure(t *testing.T) {
	raw := errors.New("stripe: Invalid API Key provided: sk_test_****1234")
	gw := &mocks.MockPaymentGateway{
		CreatePaymentIntentFunc: func(ctx context.Context, p domain.IntentParams) (*domain.PaymentIntent, error) {
			return nil, raw
		},
	}
	pub := mocks.NewMockMessageQueue()
	svc := newTestService(gw, pub)

	resp, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 2500})

	require.Error(t, err)
	assert.Nil(t, resp)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.UpstreamFailed, ue.Kind)
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, 1, gw.IntentCallCount(), "failed calls are not retried")
	assert.Empty(t, pub.Published(SubjectIntentCreated))
}

func TestCreatePaymentIntent_ProcessorUnavailable(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		CreatePaymentIntentFunc: func(ctx context.Context, p domain.IntentParams) (*domain.PaymentIntent, error) {
			return nil, fmt.Errorf("stripe: create payment intent: %w", domain.ErrProcessorUnavailable)
		},
	}
	svc := newTestService(gw, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), testCaller,
		domain.PaymentIntentRequest{Amount: 2500})

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.UpstreamUnavailable, ue.Kind)
}

func TestCreatePaymentIntent_IdenticalCallsCreateDistinctIntents(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)
	req := domain.PaymentIntentRequest{Amount: 2500, Currency: "usd"}

	first, err := svc.CreatePaymentIntent(context.Background(), testCaller, req)
	require.NoError(t, err)
	second, err := svc.CreatePaymentIntent(context.Background(), testCaller, req)
	require.NoError(t, err)

	assert.Equal(t, 2, gw.IntentCallCount())
	assert.NotEqual(t, first.ClientSecret, second.ClientSecret)
}

func TestCreatePaymentIntent_PublishesEventWithoutSecret(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		CreatePaymentIntentFunc: func(ctx context.Context, p domain.IntentParams) (*domain.PaymentIntent, error) {
			return &domain.PaymentIntent{ID: "pi_evt", ClientSecret: "pi_evt_secret_xyz"}, nil
		},
	}
	pub := mocks.NewMockMessageQueue()
	svc := newTestService(gw, pub)
	ctx := domain.WithRequestID(context.Background(), "req-42")

	_, err := svc.CreatePaymentIntent(ctx, testCaller, domain.PaymentIntentRequest{Amount: 700})
	require.NoError(t, err)

	msgs := pub.Published(SubjectIntentCreated)
	require.Len(t, msgs, 1)
	assert.NotContains(t, string(msgs[0]), "pi_evt_secret_xyz")

	var evt domain.IntentCreatedEvent
	require.NoError(t, json.Unmarshal(msgs[0], &evt))
	assert.Equal(t, "pi_evt", evt.IntentID)
	assert.Equal(t, int64(700), evt.Amount)
	assert.Equal(t, "usd", evt.Currency)
	assert.Equal(t, "user-123", evt.UserID)
	assert.Equal(t, "req-42", evt.RequestID)
	assert.NotEmpty(t, evt.ID)
}

func TestCreatePaymentIntent_PublishFailureDoesNotFailCall(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	pub := mocks.NewMockMessageQueue()
	pub.PublishFunc = func(subject string, data []byte) error {
		return errors.New("nats: connection closed")
	}
	svc := newTestService(gw, pub)

	resp, err := svc.CreatePaymentIntent(context.Background(), testCaller, domain.PaymentIntentRequest{Amount: 100})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ClientSecret)
}

func TestCreatePaymentIntent_NilCaller(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), nil, domain.PaymentIntentRequest{Amount: 100})

	require.NoError(t, err)
	assert.NotContains(t, gw.IntentCalls[0].Metadata, "user_id")
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)

	resp, err := svc.CreateCheckoutSession(context.Background(), testCaller, domain.CheckoutSessionRequest{
		ProductName: "Machine Hub Tee",
		Amount:      3000,
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_mock_1", resp.ID)
	assert.NotEmpty(t, resp.URL)

	require.Equal(t, 1, gw.CheckoutCallCount())
	call := gw.CheckoutCalls[0]
	assert.Equal(t, "Machine Hub Tee", call.ProductName)
	assert.Equal(t, int64(3000), call.Amount)
	assert.Equal(t, "usd", call.Currency)
	assert.Equal(t, int64(1), call.Quantity)
	assert.Equal(t, "https://example.com/success", call.SuccessURL)
	assert.Equal(t, "https://example.com/cancel", call.CancelURL)
}

func TestCreateCheckoutSession_RequiresProductName(t *testing.T) {
	gw := &mocks.MockPaymentGateway{}
	svc := newTestService(gw, nil)

	_, err := svc.CreateCheckoutSession(context.Background(), testCaller, domain.CheckoutSessionRequest{
		ProductName: "   ",
		Amount:      3000,
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "productName", ve.Field)
	assert.Zero(t, gw.CheckoutCallCount())
}

func TestCreateCheckoutSession_UpstreamFailure(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		CreateCheckoutSessionFunc: func(ctx context.Context, p domain.CheckoutParams) (*domain.CheckoutSession, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	svc := newTestService(gw, nil)

	_, err := svc.CreateCheckoutSession(context.Background(), testCaller, domain.CheckoutSessionRequest{
		ProductName: "Poster",
		Amount:      1200,
	})

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, opCreateCheckoutSession, ue.Op)
}

func TestCreatePaymentIntent_SubscribersReceiveEvent(t *testing.T) {
	pub := mocks.NewMockMessageQueue()
	var received []domain.IntentCreatedEvent
	require.NoError(t, pub.Subscribe(SubjectIntentCreated, func(data []byte) error {
		var evt domain.IntentCreatedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return err
		}
		received = append(received, evt)
		return nil
	}))
	svc := newTestService(&mocks.MockPaymentGateway{}, pub)

	for i := 0; i < 2; i++ {
		_, err := svc.CreatePaymentIntent(context.Background(), testCaller, domain.PaymentIntentRequest{Amount: 100})
		require.NoError(t, err)
	}

	require.Len(t, received, 2)
	assert.NotEqual(t, received[0].ID, received[1].ID)
	assert.NotEqual(t, received[0].IntentID, received[1].IntentID)
}
