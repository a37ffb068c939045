package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-legal-service/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "alive",
		"data": fiber.Map{
			"service": h.serviceName,
			"version": h.version,
		},
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "ready",
			"data":    depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"message": "one or more dependencies unavailable",
		"data":    depStatus,
	})
}
