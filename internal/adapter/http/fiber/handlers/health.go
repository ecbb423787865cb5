package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/machinehub/payments-api/internal/service/health"
)

type HealthHandler struct {
	service *health.Service
}

func NewHealthHandler(service *health.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(h.service.Health(c.UserContext()))
}

// Ready returns 503 while any check is unhealthy, e.g. the processor breaker is open.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	response := h.service.Ready(c.UserContext())

	status := fiber.StatusOK
	if !response.Ready {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(response)
}
