package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUpstreamError_Classification(t *testing.T) {
	failed := NewUpstreamError("create_payment_intent", errors.New("card_declined"))
	assert.Equal(t, UpstreamFailed, failed.Kind)

	unavailable := NewUpstreamError("create_payment_intent", fmt.Errorf("stripe: %w", ErrProcessorUnavailable))
	assert.Equal(t, UpstreamUnavailable, unavailable.Kind)
	assert.ErrorIs(t, unavailable, ErrProcessorUnavailable)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "amount must be greater than 0", (&ValidationError{Field: "amount", Reason: "must be greater than 0"}).Error())
	assert.Equal(t, "bad body", (&ValidationError{Reason: "bad body"}).Error())
}
