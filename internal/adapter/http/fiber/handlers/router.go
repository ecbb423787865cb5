package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/adapter/http/fiber/middleware"
	"github.com/machinehub/payments-api/internal/ports"
	"github.com/machinehub/payments-api/pkg/config"
)

// AppConfig carries everything NewApp wires into the router.
type AppConfig struct {
	Name      string
	BodyLimit int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Payment *PaymentHandler
	Health  *HealthHandler

	// Verifier nil admits anonymous callers.
	Verifier ports.TokenVerifier

	CORS           config.CORSConfig
	RateLimit      config.RateLimitingConfig
	LimiterStorage fiber.Storage
	MetricsPath    string

	Log *zap.Logger
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(cfg AppConfig) *fiber.App {
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 64 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ServerHeader:          cfg.Name,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(cfg.Log),
	})

	app.Use(middleware.WithRequestID())
	app.Use(middleware.AccessLog(cfg.Log))
	app.Use(recover.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.MetricsPath != "" {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.MetricsPath, func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	v1 := app.Group("/api/v1")
	if cfg.Verifier != nil {
		v1.Use(middleware.AuthRequired(cfg.Verifier))
	} else {
		v1.Use(middleware.Anonymous())
	}
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit, cfg.LimiterStorage))
	}

	v1.Post("/payment-intents", cfg.Payment.CreatePaymentIntent)
	v1.Post("/checkout-sessions", cfg.Payment.CreateCheckoutSession)

	return app
}
