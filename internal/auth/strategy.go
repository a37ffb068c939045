package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/domain"
)

// AuthCookieName carries the bridge token set during the OAuth redirect
// flow, before the frontend has stored a bearer token.
const AuthCookieName = "auth_token"

// Strategy is one credential channel. Authenticate returns the principal
// and the raw token it authenticated with (empty for session principals).
// ErrNoCredentials means the channel has nothing to act on; any other
// error is a channel failure the orchestrator may degrade past.
type Strategy interface {
	Name() string
	Authenticate(c *fiber.Ctx) (*Principal, string, error)
}

// bearerStrategy authenticates Authorization: Bearer headers.
type bearerStrategy struct {
	tokens *TokenService
}

func (s *bearerStrategy) Name() string { return "bearer" }

func (s *bearerStrategy) Authenticate(c *fiber.Ctx) (*Principal, string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, "", ErrNoCredentials
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	// Broken clients send the literal strings "null"/"undefined".
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, "", ErrMissingToken
	}

	claims, err := s.tokens.Verify(c.Context(), raw)
	if err != nil {
		return nil, "", err
	}
	return principalFromClaims(claims, domain.ProviderLocal), raw, nil
}

// sessionStrategy restores principals from the server-side OAuth session.
type sessionStrategy struct {
	sessions *SessionManager
	logger   *zap.Logger
}

func (s *sessionStrategy) Name() string { return "session" }

func (s *sessionStrategy) Authenticate(c *fiber.Ctx) (*Principal, string, error) {
	principal, err := s.sessions.Principal(c)
	if err != nil {
		// Session inspection errors are treated as "no session".
		if !errors.Is(err, ErrNoCredentials) {
			s.logger.Warn("session inspection failed", zap.Error(err))
		}
		return nil, "", ErrNoCredentials
	}

	if principal.Role == "" {
		principal.Role = domain.RoleCitizen
	}
	if principal.Provider == "" {
		principal.Provider = domain.ProviderGoogle
	}
	principal.TokenID = SessionTokenID
	return principal, "", nil
}

// cookieStrategy verifies the auth_token bridge cookie.
type cookieStrategy struct {
	tokens *TokenService
}

func (s *cookieStrategy) Name() string { return "cookie" }

func (s *cookieStrategy) Authenticate(c *fiber.Ctx) (*Principal, string, error) {
	raw := c.Cookies(AuthCookieName)
	if raw == "" {
		return nil, "", ErrNoCredentials
	}

	claims, err := s.tokens.Verify(c.Context(), raw)
	if err != nil {
		clearCookie(c, AuthCookieName)
		return nil, "", err
	}
	return principalFromClaims(claims, domain.ProviderGoogle), raw, nil
}

func principalFromClaims(claims *Claims, defaultProvider domain.Provider) *Principal {
	provider := domain.Provider(claims.Provider)
	if provider == "" {
		provider = defaultProvider
	}
	return &Principal{
		ID:          claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		Provider:    provider,
		TokenID:     claims.ID,
	}
}
