package handlers

import (
	"net/mail"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-legal-service/internal/api/dto"
	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/domain"
	"github.com/spec-kit/civic-legal-service/internal/service"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

// AuthHandler exposes registration, login, identity and logout endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	teardown *auth.Teardown
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, teardown *auth.Teardown) *AuthHandler {
	return &AuthHandler{auth: authService, teardown: teardown}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperrors.NewValidationError("invalid email address")
	}
	if len(req.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required")
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /auth/me, echoing the authenticated principal.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized Access - Please login")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ok",
		"data":    principal,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		h.auth.NotifyLogout(c.UserContext(), principal)
	}
	return h.teardown.Logout(c)
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.RoleName,
		Provider: string(user.Provider),
	}
}
