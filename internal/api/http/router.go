package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/domain"
	"github.com/spec-kit/civic-legal-service/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	OAuth          *handlers.OAuthHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
	RoleRepo       repository.RoleRepository
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes. The /auth group runs the unified
// middleware (bearer, then session, then bridge cookie); /admin runs the
// strict bearer-only variant plus the role guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authGroup.Get("/google", cfg.OAuth.Redirect)
	authGroup.Get("/google/callback", cfg.OAuth.Callback)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)
	protected.Post("/logout", cfg.Auth.Logout)

	admin := app.Group("/admin",
		cfg.AuthMiddleware.HandleBearerOnly,
		auth.RequireRoles(cfg.RoleRepo, cfg.Logger, domain.RoleAdmin),
	)
	admin.Get("/roles", cfg.Admin.ListRoles)
	admin.Get("/auth-failures", cfg.Admin.AuthFailures)
}
