package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/machinehub/payments-api/internal/domain"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDLimit caps the length of a client supplied request ID.
const RequestIDLimit = 128

// WithRequestID reuses the client's X-Request-ID or generates one, echoes it
// back and attaches it to the user context.
func WithRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > RequestIDLimit {
			id = uuid.NewString()
		}

		c.Locals(requestIDKey, id)
		c.Set(HeaderRequestID, id)
		c.SetUserContext(domain.WithRequestID(c.UserContext(), id))

		return c.Next()
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
