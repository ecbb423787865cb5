package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Payment        PaymentConfig        `mapstructure:"payment"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Events         EventsConfig         `mapstructure:"events"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type PaymentConfig struct {
	Stripe          StripeConfig   `mapstructure:"stripe"`
	DefaultCurrency string         `mapstructure:"default_currency"`
	Checkout        CheckoutConfig `mapstructure:"checkout"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	// APIURL overrides the processor endpoint, e.g. for stripe-mock.
	APIURL          string        `mapstructure:"api_url"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
}

type CheckoutConfig struct {
	SuccessURL string `mapstructure:"success_url"`
	CancelURL  string `mapstructure:"cancel_url"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinRequests      int           `mapstructure:"min_requests"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	ByUser      bool          `mapstructure:"by_user"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type RedisConfig struct {
	URL         string        `mapstructure:"url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

type EventsConfig struct {
	Driver      string `mapstructure:"driver"`
	NATSURL     string `mapstructure:"nats_url"`
	RabbitMQURL string `mapstructure:"rabbitmq_url"`
}

type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	StripePath string `mapstructure:"stripe_path"`
	StripeKey  string `mapstructure:"stripe_key"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Payment.Stripe.SecretKey == "" && !c.Vault.Enabled {
		errs = append(errs, errors.New("payment.stripe.secret_key is required (or enable vault)"))
	}
	if c.Vault.Enabled && (c.Vault.Address == "" || c.Vault.StripePath == "") {
		errs = append(errs, errors.New("vault.address and vault.stripe_path are required when vault is enabled"))
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required when auth is enabled"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	switch c.Events.Driver {
	case "", "none":
	case "nats":
		if c.Events.NATSURL == "" {
			errs = append(errs, errors.New("events.nats_url is required for the nats driver"))
		}
	case "rabbitmq":
		if c.Events.RabbitMQURL == "" {
			errs = append(errs, errors.New("events.rabbitmq_url is required for the rabbitmq driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}

	return errors.Join(errs...)
}
