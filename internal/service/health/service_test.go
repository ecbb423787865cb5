package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestReady_NoCheckers(t *testing.T) {
	s := NewService("v1", zap.NewNop())

	resp := s.Ready(context.Background())

	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReady_BreakerStates(t *testing.T) {
	tests := []struct {
		state  string
		ready  bool
		status Status
	}{
		{"closed", true, StatusHealthy},
		{"half-open", true, StatusDegraded},
		{"open", false, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			s := NewService("v1", zap.NewNop())
			s.RegisterChecker("payment_processor", BreakerChecker(func() string { return tt.state }))

			resp := s.Ready(context.Background())

			assert.Equal(t, tt.ready, resp.Ready)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, "payment_processor", resp.Checks["payment_processor"].Name)
		})
	}
}

func TestReady_PingFailureIsUnhealthy(t *testing.T) {
	s := NewService("v1", zap.NewNop())
	s.RegisterChecker("payment_processor", BreakerChecker(func() string { return "closed" }))
	s.RegisterChecker("redis", PingChecker(func(ctx context.Context) error {
		return errors.New("connection refused")
	}, zap.NewNop()))

	resp := s.Ready(context.Background())

	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Checks["redis"].Status)
	assert.Contains(t, resp.Checks["redis"].Message, "connection refused")
	assert.Equal(t, StatusHealthy, resp.Checks["payment_processor"].Status)
}

func TestHealth(t *testing.T) {
	resp := NewService("v1.2.3", zap.NewNop()).Health(context.Background())

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
}
