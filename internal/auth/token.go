package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/config"
	"github.com/spec-kit/civic-legal-service/internal/domain"
)

// Revocation-store key namespaces. An issued token is live only while its
// allow-list record exists; a deny-list record kills it outright.
const (
	allowListPrefix = "jwt:"
	denyListPrefix  = "blacklist:"
	denySentinel    = "revoked"
)

// Claims describes the signed token payload.
type Claims struct {
	UserID      string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Provider    string   `json:"provider,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues, verifies and revokes signed tokens. Every issued
// token is mirrored by an allow-list record in the revocation store whose
// TTL matches the token validity window, so records vanish exactly when
// the token would have expired anyway.
type TokenService struct {
	secret     []byte
	ttl        time.Duration
	denyMargin time.Duration
	store      redis.UniversalClient
	logger     *zap.Logger
}

// NewTokenService builds the service from config and an injected store.
func NewTokenService(cfg config.AuthConfig, store redis.UniversalClient, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL(),
		denyMargin: cfg.DenylistMargin(),
		store:      store,
		logger:     logger,
	}
}

// TTL returns the validity window applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func allowListKey(jti string) string {
	return allowListPrefix + jti
}

func denyListKey(raw string) string {
	return denyListPrefix + raw
}

// Issue signs a token for the principal and records it in the allow-list.
// A store-write failure is a hard failure: the token must not be handed
// out unless its allow-list record exists.
func (s *TokenService) Issue(ctx context.Context, id, email, role string, provider domain.Provider) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID:   id,
		Email:    email,
		Role:     role,
		Provider: string(provider),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal token payload: %w", err)
	}
	if err := s.store.Set(ctx, allowListKey(claims.ID), payload, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("write allow-list record: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify decodes a raw token and checks it against both revocation
// namespaces. All failure paths are logged before returning; verification
// failures are expected traffic and the caller decides the HTTP outcome.
func (s *TokenService) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.decode(raw)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidToken, err)
		s.logger.Warn("token verification failed",
			zap.String("category", "token_verification"),
			zap.Error(err))
		return nil, wrapped
	}

	if err := s.store.Get(ctx, allowListKey(claims.ID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Warn("token verification failed",
				zap.String("category", "token_verification"),
				zap.String("jti", claims.ID),
				zap.Error(ErrTokenRevoked))
			return nil, ErrTokenRevoked
		}
		s.logger.Error("revocation store lookup failed",
			zap.String("category", "token_verification"),
			zap.Error(err))
		return nil, fmt.Errorf("read allow-list record: %w", err)
	}

	denied, err := s.store.Exists(ctx, denyListKey(raw)).Result()
	if err != nil {
		s.logger.Error("revocation store lookup failed",
			zap.String("category", "token_verification"),
			zap.Error(err))
		return nil, fmt.Errorf("read deny-list record: %w", err)
	}
	if denied > 0 {
		s.logger.Warn("token verification failed",
			zap.String("category", "token_verification"),
			zap.String("jti", claims.ID),
			zap.Error(ErrTokenBlacklisted))
		return nil, ErrTokenBlacklisted
	}

	return claims, nil
}

// Destroy places the raw token on the deny-list. The record outlives the
// token's own remaining validity by the configured safety margin. An empty
// token is a no-op so call sites may pass absent credentials defensively.
func (s *TokenService) Destroy(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	ttl := s.denyMargin
	if claims, err := s.decode(raw); err == nil && claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > ttl {
			ttl = remaining
		}
	}

	if err := s.store.Set(ctx, denyListKey(raw), denySentinel, ttl).Err(); err != nil {
		s.logger.Error("token destruction failed",
			zap.String("category", "token_destruction"),
			zap.Error(err))
		return fmt.Errorf("write deny-list record: %w", err)
	}
	return nil
}

func (s *TokenService) decode(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" {
		return nil, errors.New("token payload missing jti")
	}
	return claims, nil
}
