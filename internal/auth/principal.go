package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-legal-service/internal/domain"
)

const (
	principalKey = "auth_principal"
	rawTokenKey  = "auth_raw_token"
)

// SessionTokenID is the sentinel tokenId for principals restored from a
// server-side session rather than a signed token.
const SessionTokenID = "session"

// Principal is the authenticated identity attached to a request. It is
// reconstructed per-request from one credential channel and never persisted.
type Principal struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Permissions []string        `json:"permissions,omitempty"`
	Provider    domain.Provider `json:"provider"`
	TokenID     string          `json:"tokenId"`
}

// SetPrincipal attaches the authenticated principal and the raw credential
// to the request scope for downstream handlers.
func SetPrincipal(c *fiber.Ctx, p *Principal, rawToken string) {
	c.Locals(principalKey, p)
	if rawToken != "" {
		c.Locals(rawTokenKey, rawToken)
	}
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// TokenFromContext retrieves the raw token the request authenticated with,
// when the winning channel carried one.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(rawTokenKey)
	if val == nil {
		return "", false
	}
	token, ok := val.(string)
	return token, ok && token != ""
}
