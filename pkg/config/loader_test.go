package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := LoadFile(writeConfig(t, "app:\n  name: payments-test\n"))

	require.NoError(t, err)
	assert.Equal(t, "payments-test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 40*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, "usd", cfg.Payment.DefaultCurrency)
	assert.Equal(t, "sk_test_env", cfg.Payment.Stripe.SecretKey)
	assert.Equal(t, 30*time.Second, cfg.Payment.Stripe.UpstreamTimeout)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "jwt-secret", cfg.Auth.Secret)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, "/metrics", cfg.Prometheus.Path)
}

func TestLoadFile_FileAndEnvOverrides(t *testing.T) {
	t.Setenv("APP_PAYMENT_STRIPE_SECRET_KEY", "sk_test_app")
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_CURRENCY", " EUR ")
	t.Setenv("APP_HTTP_READ_TIMEOUT", "3s")

	cfg, err := LoadFile(writeConfig(t, `
http:
  write_timeout: 15s
auth:
  enabled: false
rate_limiting:
  max_requests: 5
  window: 10s
events:
  driver: nats
  nats_url: nats://localhost:4222
`))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "eur", cfg.Payment.DefaultCurrency)
	assert.Equal(t, "sk_test_app", cfg.Payment.Stripe.SecretKey)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 5, cfg.RateLimiting.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimiting.Window)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
}

func TestLoadFile_MissingSecrets(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_SECRET", "")
	t.Setenv("APP_PAYMENT_STRIPE_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_AUTH_SECRET", "")

	_, err := LoadFile(writeConfig(t, "app:\n  name: x\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment.stripe.secret_key")
	assert.Contains(t, err.Error(), "auth.secret")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTP:    HTTPConfig{Port: 8080},
			Payment: PaymentConfig{Stripe: StripeConfig{SecretKey: "sk_test"}},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Payment.Stripe.SecretKey = ""
	cfg.Vault = VaultConfig{Enabled: true, Address: "http://vault:8200", StripePath: "secret/data/stripe"}
	assert.NoError(t, cfg.Validate(), "vault supplies the key")

	cfg = valid()
	cfg.HTTP.Port = 70000
	assert.ErrorContains(t, cfg.Validate(), "out of range")

	cfg = valid()
	cfg.Events.Driver = "rabbitmq"
	assert.ErrorContains(t, cfg.Validate(), "rabbitmq_url")

	cfg = valid()
	cfg.Events.Driver = "kafka"
	assert.ErrorContains(t, cfg.Validate(), "unknown events.driver")
}
