package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/machinehub/payments-api/internal/adapter/cache"
	"github.com/machinehub/payments-api/internal/adapter/external/payment"
	"github.com/machinehub/payments-api/internal/adapter/http/fiber/handlers"
	"github.com/machinehub/payments-api/internal/adapter/queue"
	"github.com/machinehub/payments-api/internal/adapter/vault"
	"github.com/machinehub/payments-api/internal/observability/telemetry"
	"github.com/machinehub/payments-api/internal/ports"
	"github.com/machinehub/payments-api/internal/service/auth"
	"github.com/machinehub/payments-api/internal/service/health"
	paymentsvc "github.com/machinehub/payments-api/internal/service/payment"
	"github.com/machinehub/payments-api/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting payments API",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Tracing
	tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry, cfg.App.Version)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// 4. Processor credential
	stripeKey := cfg.Payment.Stripe.SecretKey
	if cfg.Vault.Enabled {
		stripeKey, err = readStripeKey(cfg.Vault)
		if err != nil {
			logger.Fatal("Failed to read Stripe key from Vault", zap.Error(err))
		}
		logger.Info("Stripe key loaded from Vault", zap.String("path", cfg.Vault.StripePath))
	}

	// 5. Shared storage for the limiter and token revocations
	var (
		limiterStorage fiber.Storage
		revocations    auth.RevocationStore
		redisPing      func(ctx context.Context) error
	)
	if cfg.Redis.URL != "" {
		redisStorage, err := cache.NewRedisStorage(cache.Options{
			URL:         cfg.Redis.URL,
			DialTimeout: cfg.Redis.DialTimeout,
			KeyPrefix:   cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStorage.Close()
		limiterStorage = redisStorage
		revocations = redisStorage
		redisPing = redisStorage.Ping
	} else {
		logger.Warn("Redis not configured, rate limits are per instance")
	}

	// 6. Events
	messageQueue, err := queue.New(cfg.Events, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	var publisher ports.EventPublisher
	if messageQueue != nil {
		defer messageQueue.Close()
		publisher = messageQueue
	}

	// 7. Processor gateway
	gateway, err := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey: stripeKey,
		APIURL:    cfg.Payment.Stripe.APIURL,
		Timeout:   cfg.Payment.Stripe.UpstreamTimeout,
		Breaker: payment.BreakerSettings{
			Enabled:          cfg.CircuitBreaker.Enabled,
			MaxRequests:      uint32(cfg.CircuitBreaker.MaxRequests),
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			MinRequests:      uint32(cfg.CircuitBreaker.MinRequests),
		},
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// 8. Services
	paymentService := paymentsvc.NewService(paymentsvc.Config{
		DefaultCurrency:    cfg.Payment.DefaultCurrency,
		CheckoutSuccessURL: cfg.Payment.Checkout.SuccessURL,
		CheckoutCancelURL:  cfg.Payment.Checkout.CancelURL,
	}, gateway, publisher, logger)

	var verifier ports.TokenVerifier
	if cfg.Auth.Enabled {
		jwtVerifier, err := auth.NewJWTVerifier(auth.Config{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			Leeway:   30 * time.Second,
		}, revocations, logger)
		if err != nil {
			logger.Fatal("Failed to initialize token verifier", zap.Error(err))
		}
		verifier = jwtVerifier
	} else {
		logger.Warn("Authentication disabled, all callers are anonymous")
	}

	healthService := health.NewService(cfg.App.Version, logger)
	healthService.RegisterChecker("payment_processor", health.BreakerChecker(gateway.State))
	if redisPing != nil {
		healthService.RegisterChecker("redis", health.PingChecker(redisPing, logger))
	}

	// 9. HTTP Server
	metricsPath := ""
	if cfg.Prometheus.Enabled {
		metricsPath = cfg.Prometheus.Path
	}

	app := handlers.NewApp(handlers.AppConfig{
		Name:           cfg.App.Name,
		BodyLimit:      cfg.HTTP.BodyLimit,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		Payment:        handlers.NewPaymentHandler(paymentService, logger),
		Health:         handlers.NewHealthHandler(healthService),
		Verifier:       verifier,
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimiting,
		LimiterStorage: limiterStorage,
		MetricsPath:    metricsPath,
		Log:            logger,
	})

	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func readStripeKey(cfg config.VaultConfig) (string, error) {
	sm, err := vault.NewSecretManager(cfg.Address, cfg.Token)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return sm.ReadStripeSecretKey(ctx, cfg.StripePath, cfg.StripeKey)
}
