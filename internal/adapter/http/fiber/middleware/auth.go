package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/machinehub/payments-api/internal/domain"
	"github.com/machinehub/payments-api/internal/ports"
)

const callerKey = "caller"

// AuthRequired verifies the bearer token and stores the caller in Locals.
func AuthRequired(verifier ports.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return domain.ErrUnauthenticated
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return domain.ErrUnauthenticated
		}

		caller, err := verifier.VerifyToken(c.UserContext(), parts[1])
		if err != nil {
			return domain.ErrUnauthenticated
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// Anonymous admits every request as the anonymous caller. Local development only.
func Anonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(callerKey, domain.AnonymousCaller())
		return c.Next()
	}
}

// CallerFrom returns the caller set by AuthRequired or Anonymous.
func CallerFrom(c *fiber.Ctx) *domain.Caller {
	caller, ok := c.Locals(callerKey).(*domain.Caller)
	if !ok || caller == nil {
		return domain.AnonymousCaller()
	}
	return caller
}
