package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/repository"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

// RequireRoles guards a route group with a fixed allow-list of role names.
// The principal's role is resolved by name against the role table; the
// token claim alone is not authoritative.
func RequireRoles(roles repository.RoleRepository, logger *zap.Logger, allowed ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role == "" {
			return apperrors.NewForbidden("Role information is missing")
		}

		role, err := roles.GetByName(c.Context(), principal.Role)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden("Invalid role")
			}
			logger.Error("role resolution failed",
				zap.String("role", principal.Role),
				zap.Error(err))
			return apperrors.NewInternal("Error checking role permissions", err)
		}

		if len(allowedSet) > 0 {
			if _, exists := allowedSet[role.Name]; !exists {
				return apperrors.NewForbidden("You do not have the required role to perform this action")
			}
		}
		return c.Next()
	}
}
