package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civic-legal-service/internal/config"
)

const sessionPrincipalField = "principal"

// sessionKeyPrefix namespaces session records in the shared Redis instance
// alongside the token allow/deny lists.
const sessionKeyPrefix = "session:"

// SessionManager wraps the Fiber session store. Sessions back the OAuth
// login path only; token-authenticated requests never touch them.
type SessionManager struct {
	store      *session.Store
	cookieName string
}

// NewSessionManager builds a Redis-backed session store.
func NewSessionManager(cfg config.SessionConfig, client redis.UniversalClient) *SessionManager {
	store := session.New(session.Config{
		Storage:        newRedisStorage(client, sessionKeyPrefix),
		KeyLookup:      "cookie:" + cfg.CookieName,
		Expiration:     cfg.TTL(),
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: cfg.CookieHTTPOnly,
		CookieSameSite: "Lax",
	})
	return &SessionManager{store: store, cookieName: cfg.CookieName}
}

// CookieName returns the session cookie name, for logout cookie clearing.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Principal restores the session-carried principal, if any. A session with
// no principal (or an empty id) yields ErrNoCredentials.
func (m *SessionManager) Principal(c *fiber.Ctx) (*Principal, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	raw, ok := sess.Get(sessionPrincipalField).(string)
	if !ok || raw == "" {
		return nil, ErrNoCredentials
	}

	var principal Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return nil, fmt.Errorf("decode session principal: %w", err)
	}
	if principal.ID == "" {
		return nil, ErrNoCredentials
	}
	return &principal, nil
}

// SetPrincipal serializes the principal into the session and saves it,
// establishing the session cookie on the response.
func (m *SessionManager) SetPrincipal(c *fiber.Ctx, p *Principal) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session principal: %w", err)
	}
	sess.Set(sessionPrincipalField, string(payload))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy removes the server-side session record. A request without a
// session is not an error.
func (m *SessionManager) Destroy(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// redisStorage adapts a go-redis client to fiber.Storage so the session
// middleware shares the service's Redis connection.
type redisStorage struct {
	client redis.UniversalClient
	prefix string
}

func newRedisStorage(client redis.UniversalClient, prefix string) *redisStorage {
	return &redisStorage{client: client, prefix: prefix}
}

func (s *redisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *redisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *redisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), s.prefix+key).Err()
}

func (s *redisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *redisStorage) Close() error {
	// The client is owned by the caller and shared with the token service.
	return nil
}
