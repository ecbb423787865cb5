package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCurrencyCode(t *testing.T) {
	for _, code := range []string{"usd", "USD", "eur", "gbp", "jpy", "brl"} {
		assert.True(t, IsCurrencyCode(code), code)
	}
	for _, code := range []string{"", "us", "usdd", "xxx", "zzz", "12$"} {
		assert.False(t, IsCurrencyCode(code), code)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "eur", NormalizeCurrency(" EUR "))
}

type wireAmount struct {
	Amount MinorUnits `json:"amount" validate:"required,minor_units"`
}

func TestValidate_MinorUnits(t *testing.T) {
	assert.NoError(t, Validate(wireAmount{Amount: "2500"}))

	tests := []struct {
		name   string
		amount MinorUnits
		reason string
	}{
		{"missing", "", "is required"},
		{"fraction", "12.5", "must be a whole number of minor currency units"},
		{"exponent", "1e3", "must be a whole number of minor currency units"},
		{"too large", "9223372036854775808", "must be a whole number of minor currency units"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(wireAmount{Amount: tt.amount})

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "amount", ve.Field)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func TestValidate_PaymentIntentRequest(t *testing.T) {
	assert.NoError(t, Validate(PaymentIntentRequest{Amount: 1}))
	assert.NoError(t, Validate(PaymentIntentRequest{Amount: 1, Currency: "EUR"}))

	err := Validate(PaymentIntentRequest{Amount: 1, Currency: "euro"})
	assert.EqualError(t, err, "currency must be an ISO 4217 currency code")
	assert.True(t, IsValidation(err))
}

func TestValidate_CheckoutProductNameLength(t *testing.T) {
	long := make([]byte, 251)
	for i := range long {
		long[i] = 'a'
	}

	err := Validate(CheckoutSessionRequest{ProductName: string(long), Amount: 100})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "productName", ve.Field)
	assert.Equal(t, "must be at most 250 characters", ve.Reason)
}
