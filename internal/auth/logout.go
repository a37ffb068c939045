package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Teardown invalidates every credential channel a request presents. A
// request can legitimately carry several at once (a bridge cookie can
// survive next to a separately established session), and logout must give
// each one a chance to clean up.
type Teardown struct {
	tokens   *TokenService
	sessions *SessionManager
	logger   *zap.Logger
}

// NewTeardown constructs the logout orchestrator.
func NewTeardown(tokens *TokenService, sessions *SessionManager, logger *zap.Logger) *Teardown {
	return &Teardown{tokens: tokens, sessions: sessions, logger: logger}
}

type channelResult struct {
	channel string
	err     error
}

// Logout tears down all present channels concurrently, waits for every one
// to settle, and reports success even on partial failure. Partial failures
// are logged, never surfaced: logout is idempotent from the client's view.
func (t *Teardown) Logout(c *fiber.Ctx) error {
	bearerToken := bearerTokenFromHeader(c)
	cookieToken := c.Cookies(AuthCookieName)
	ctx := c.UserContext()

	type job struct {
		channel string
		run     func() error
	}
	jobs := make([]job, 0, 3)

	if bearerToken != "" {
		jobs = append(jobs, job{channel: "bearer", run: func() error {
			return t.tokens.Destroy(ctx, bearerToken)
		}})
	}
	// Identical cookie and bearer tokens only need one deny-list record.
	if cookieToken != "" && cookieToken != bearerToken {
		jobs = append(jobs, job{channel: "cookie", run: func() error {
			return t.tokens.Destroy(ctx, cookieToken)
		}})
	}
	jobs = append(jobs, job{channel: "session", run: func() error {
		return t.sessions.Destroy(c)
	}})

	results := make(chan channelResult, len(jobs))
	for _, j := range jobs {
		go func(j job) {
			results <- channelResult{channel: j.channel, err: j.run()}
		}(j)
	}

	var failures []string
	for range jobs {
		res := <-results
		if res.err != nil {
			t.logger.Warn("logout channel failed",
				zap.String("channel", res.channel),
				zap.Error(res.err))
			failures = append(failures, res.channel+": "+res.err.Error())
		}
	}
	if len(failures) > 0 {
		t.logger.Warn("logout completed with partial failures",
			zap.Int("failed", len(failures)),
			zap.Strings("reasons", failures))
	}

	clearCookie(c, AuthCookieName)
	clearCookie(c, t.sessions.CookieName())

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
		"data":    nil,
	})
}

// DestroyAll revokes both token channels outside an HTTP context, for
// administrative account suspension.
func (t *Teardown) DestroyAll(ctx context.Context, tokens ...string) {
	seen := make(map[string]struct{}, len(tokens))
	for _, raw := range tokens {
		if raw == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		if err := t.tokens.Destroy(ctx, raw); err != nil {
			t.logger.Warn("token destruction failed during bulk revoke", zap.Error(err))
		}
	}
}

func bearerTokenFromHeader(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "null" || raw == "undefined" {
		return ""
	}
	return raw
}
