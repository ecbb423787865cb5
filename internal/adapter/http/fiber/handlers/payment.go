package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/adapter/http/fiber/middleware"
	"github.com/machinehub/payments-api/internal/domain"
	"github.com/machinehub/payments-api/internal/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service ports.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

// CreatePaymentIntentRequest is the wire body. Amount keeps the JSON literal
// so that 12.5 is reported as a validation error and large integers are not
// rounded. Positivity is checked by the service.
type CreatePaymentIntentRequest struct {
	Amount   domain.MinorUnits `json:"amount" validate:"required,minor_units"`
	Currency string            `json:"currency" validate:"omitempty,currency_code"`
}

type CreateCheckoutSessionRequest struct {
	ProductName string            `json:"productName" validate:"required,notblank,max=250"`
	Amount      domain.MinorUnits `json:"amount" validate:"required,minor_units"`
	Currency    string            `json:"currency" validate:"omitempty,currency_code"`
}

// CreatePaymentIntent handles POST /api/v1/payment-intents.
func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	var req CreatePaymentIntentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	amount, _ := req.Amount.Int64()
	resp, err := h.service.CreatePaymentIntent(c.UserContext(), middleware.CallerFrom(c), domain.PaymentIntentRequest{
		Amount:   amount,
		Currency: req.Currency,
	})
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// CreateCheckoutSession handles POST /api/v1/checkout-sessions.
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req CreateCheckoutSessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	amount, _ := req.Amount.Int64()
	resp, err := h.service.CreateCheckoutSession(c.UserContext(), middleware.CallerFrom(c), domain.CheckoutSessionRequest{
		ProductName: req.ProductName,
		Amount:      amount,
		Currency:    req.Currency,
	})
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return &domain.ValidationError{Reason: "request body must be a JSON object"}
	}
	return domain.Validate(out)
}
