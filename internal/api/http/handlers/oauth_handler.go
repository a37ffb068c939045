package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/service"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler drives the Google delegated-login flow. A successful
// callback establishes BOTH a server-side session and an auth_token bridge
// cookie, so the frontend works before it has stored a bearer token.
type OAuthHandler struct {
	google   *auth.GoogleOAuth
	auth     *service.AuthService
	sessions *auth.SessionManager
	logger   *zap.Logger
	redirect string
}

// NewOAuthHandler constructs handler. successRedirect is where the browser
// lands after login (the frontend's post-login route).
func NewOAuthHandler(google *auth.GoogleOAuth, authService *service.AuthService, sessions *auth.SessionManager, logger *zap.Logger, successRedirect string) *OAuthHandler {
	if successRedirect == "" {
		successRedirect = "/"
	}
	return &OAuthHandler{
		google:   google,
		auth:     authService,
		sessions: sessions,
		logger:   logger,
		redirect: successRedirect,
	}
}

// Redirect handles GET /auth/google.
func (h *OAuthHandler) Redirect(c *fiber.Ctx) error {
	if !h.google.Enabled() {
		return apperrors.NewDomainError("OAUTH_DISABLED", "Google login is not configured", fiber.StatusNotImplemented)
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// Callback handles GET /auth/google/callback.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	if !h.google.Enabled() {
		return apperrors.NewDomainError("OAUTH_DISABLED", "Google login is not configured", fiber.StatusNotImplemented)
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return apperrors.NewUnauthorized("invalid oauth state")
	}
	code := c.Query("code")
	if code == "" {
		return apperrors.NewUnauthorized("missing authorization code")
	}

	identity, err := h.google.Exchange(c.UserContext(), code)
	if err != nil {
		h.logger.Warn("oauth exchange failed", zap.Error(err))
		return apperrors.NewUnauthorized("Google login failed")
	}

	user, token, exp, err := h.auth.CompleteOAuth(c.UserContext(), identity)
	if err != nil {
		return err
	}

	principal := &auth.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.RoleName,
		Provider: user.Provider,
		TokenID:  auth.SessionTokenID,
	}
	if err := h.sessions.SetPrincipal(c, principal); err != nil {
		h.logger.Error("session establishment failed", zap.Error(err))
		return apperrors.NewInternal("Authentication error occurred", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.AuthCookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	clearStateCookie(c)

	return c.Redirect(h.redirect, fiber.StatusFound)
}

func clearStateCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
	})
}
