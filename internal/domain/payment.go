package domain

import (
	"time"
)

// DefaultCurrency is used when neither the caller nor the configuration names one.
const DefaultCurrency = "usd"

// PaymentIntentRequest is the caller input for creating a payment intent.
// Amount is expressed in minor currency units (cents for usd).
type PaymentIntentRequest struct {
	Amount   int64  `json:"amount" validate:"gt=0"`
	Currency string `json:"currency,omitempty" validate:"omitempty,currency_code"`
}

// PaymentIntentResponse is everything the caller gets back: the single-use
// client secret used by the processor's own payment UI.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentIntent is the processor-side record as reported by the gateway.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// IntentParams is what the gateway sends upstream for a new payment intent.
type IntentParams struct {
	Amount                  int64
	Currency                string
	AutomaticPaymentMethods bool
	Metadata                map[string]string
}

// CheckoutSessionRequest asks for a hosted checkout page selling one product.
type CheckoutSessionRequest struct {
	ProductName string `json:"productName" validate:"required,notblank,max=250"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,currency_code"`
}

// CheckoutSessionResponse carries the session handle and the page to redirect to.
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams is what the gateway sends upstream for a new checkout session.
type CheckoutParams struct {
	ProductName string
	Amount      int64
	Currency    string
	Quantity    int64
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the processor-side checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// IntentCreatedEvent is published after a payment intent has been created.
// It intentionally has no client secret.
type IntentCreatedEvent struct {
	ID        string    `json:"id"`
	IntentID  string    `json:"intentId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	UserID    string    `json:"userId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
