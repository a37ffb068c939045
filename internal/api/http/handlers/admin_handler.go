package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-legal-service/internal/observability"
	"github.com/spec-kit/civic-legal-service/internal/repository"
)

// AdminHandler exposes administrative endpoints behind the role guard.
type AdminHandler struct {
	roles   repository.RoleRepository
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(roles repository.RoleRepository, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{roles: roles, metrics: metrics}
}

// ListRoles handles GET /admin/roles.
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.Context())
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(roles))
	for _, role := range roles {
		out = append(out, fiber.Map{"id": role.ID, "name": role.Name})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ok",
		"data":    out,
	})
}

// AuthFailures handles GET /admin/auth-failures, exposing the in-memory
// counters for abuse monitoring.
func (h *AdminHandler) AuthFailures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ok",
		"data":    h.metrics.AuthFailures(),
	})
}
