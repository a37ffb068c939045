package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/spec-kit/civic-legal-service/internal/config"
)

// Endpoint declared inline to keep the oauth2/google subpackage (and its
// cloud metadata dependency) out of the build.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser is the subset of the userinfo payload the platform needs.
type GoogleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleOAuth drives the authorization-code flow for delegated login.
type GoogleOAuth struct {
	cfg *oauth2.Config
}

// NewGoogleOAuth builds the flow from config. Returns a disabled instance
// when no client credentials are configured.
func NewGoogleOAuth(cfg config.OAuthConfig) *GoogleOAuth {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return &GoogleOAuth{}
	}
	return &GoogleOAuth{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     googleEndpoint,
	}}
}

// Enabled reports whether delegated login is configured.
func (g *GoogleOAuth) Enabled() bool {
	return g.cfg != nil
}

// AuthCodeURL returns the consent-screen redirect for the given state nonce.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token and fetches the
// user's identity from the userinfo endpoint.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	resp, err := g.cfg.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("userinfo payload missing email")
	}
	return &user, nil
}
