package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/machinehub/payments-api/pkg/config"
)

// RateLimit limits requests per window, keyed by caller when ByUser is set
// and by client IP otherwise. storage may be nil for in-process counting.
func RateLimit(cfg config.RateLimitingConfig, storage fiber.Storage) fiber.Handler {
	max := cfg.MaxRequests
	if max <= 0 {
		max = 30
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if cfg.ByUser {
				if caller := CallerFrom(c); !caller.Anonymous && caller.UserID != "" {
					return "user:" + caller.UserID
				}
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "too many requests",
				Code:  "resource-exhausted",
			})
		},
		Storage: storage,
	})
}
