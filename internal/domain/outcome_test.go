package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentOutcome(t *testing.T) {
	reason, failed := Completed().Reason()
	assert.False(t, failed)
	assert.Empty(t, reason)
	assert.Equal(t, "completed", Completed().String())
	assert.Equal(t, OutcomeCanceled, Canceled().Kind())

	reason, failed = Failed("card declined").Reason()
	assert.True(t, failed)
	assert.Equal(t, "card declined", reason)
	assert.Equal(t, "failed: card declined", Failed("card declined").String())

	reason, _ = Failed("").Reason()
	assert.Equal(t, "unknown error", reason)
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("failed", "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, Failed("insufficient funds"), o)

	o, err = ParseOutcome("canceled", "ignored")
	require.NoError(t, err)
	assert.Equal(t, Canceled(), o)

	_, err = ParseOutcome("pending", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "outcome", ve.Field)
}
