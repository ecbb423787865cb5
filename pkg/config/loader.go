package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (if present), a local .env file (if present)
// and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	return load(v)
}

// LoadFile reads the given config file plus the environment.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for container deploys
	v.BindEnv("http.port", "APP_HTTP_PORT", "PORT", "HTTP_PORT")
	v.BindEnv("payment.stripe.secret_key", "APP_PAYMENT_STRIPE_SECRET_KEY", "STRIPE_SECRET_KEY", "STRIPE_SECRET")
	v.BindEnv("payment.default_currency", "APP_PAYMENT_DEFAULT_CURRENCY", "DEFAULT_CURRENCY")
	v.BindEnv("auth.secret", "APP_AUTH_SECRET", "JWT_SECRET")
	v.BindEnv("redis.url", "APP_REDIS_URL", "REDIS_URL")
	v.BindEnv("events.nats_url", "APP_EVENTS_NATS_URL", "NATS_URL")
	v.BindEnv("events.rabbitmq_url", "APP_EVENTS_RABBITMQ_URL", "RABBITMQ_URL")
	v.BindEnv("vault.address", "APP_VAULT_ADDRESS", "VAULT_ADDR")
	v.BindEnv("vault.token", "APP_VAULT_TOKEN", "VAULT_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "APP_LOGGING_LEVEL", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Payment.DefaultCurrency = strings.ToLower(strings.TrimSpace(cfg.Payment.DefaultCurrency))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "machinehub-payments")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.environment", "production")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 40*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 16*1024)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	v.SetDefault("payment.default_currency", "usd")
	v.SetDefault("payment.stripe.upstream_timeout", 30*time.Second)
	v.SetDefault("payment.checkout.success_url", "https://example.com/success")
	v.SetDefault("payment.checkout.cancel_url", "https://example.com/cancel")

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)
	v.SetDefault("circuit_breaker.min_requests", 5)

	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.max_requests", 30)
	v.SetDefault("rate_limiting.window", time.Minute)
	v.SetDefault("rate_limiting.by_user", true)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.key_prefix", "payments:")

	v.SetDefault("events.driver", "none")

	v.SetDefault("vault.stripe_key", "secret_key")

	v.SetDefault("opentelemetry.service_name", "machinehub-payments")
	v.SetDefault("opentelemetry.jaeger.endpoint", "http://jaeger:14268/api/traces")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")
}
