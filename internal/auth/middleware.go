package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/observability"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

// Middleware authenticates requests against an ordered list of credential
// channels: bearer token, then server-side session, then the auth_token
// bridge cookie. The first channel to produce a principal wins.
type Middleware struct {
	strategies []Strategy
	bearer     Strategy
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewMiddleware constructs the middleware with the standard channel order.
func NewMiddleware(tokens *TokenService, sessions *SessionManager, logger *zap.Logger, metrics *observability.Metrics) *Middleware {
	bearer := &bearerStrategy{tokens: tokens}
	return &Middleware{
		strategies: []Strategy{
			bearer,
			&sessionStrategy{sessions: sessions, logger: logger},
			&cookieStrategy{tokens: tokens},
		},
		bearer:  bearer,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle tries every channel in order. A channel verification failure is
// non-fatal to the request; only exhausting all channels rejects it.
func (m *Middleware) Handle(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("authentication panic", zap.Any("panic", r))
			err = apperrors.NewInternal("Authentication error occurred", nil)
		}
	}()

	for _, strategy := range m.strategies {
		principal, raw, strategyErr := strategy.Authenticate(c)
		if strategyErr == nil {
			SetPrincipal(c, principal, raw)
			return c.Next()
		}
		if errors.Is(strategyErr, ErrNoCredentials) {
			continue
		}
		if errors.Is(strategyErr, ErrMissingToken) {
			return apperrors.NewUnauthorized("Authentication token is missing")
		}
		if !IsVerificationFailure(strategyErr) {
			// Store unavailability is the one failure class that must
			// not degrade to another channel.
			m.logger.Error("authentication channel error",
				zap.String("channel", strategy.Name()),
				zap.Error(strategyErr))
			return apperrors.NewInternal("Authentication error occurred", strategyErr)
		}
		m.recordFailure(strategy.Name(), strategyErr)
	}

	return apperrors.NewUnauthorized("Unauthorized Access - Please login")
}

// HandleBearerOnly is the strict variant used on route groups without OAuth
// bridging; any bearer failure rejects immediately instead of degrading.
func (m *Middleware) HandleBearerOnly(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("authentication panic", zap.Any("panic", r))
			err = apperrors.NewInternal("Authentication error occurred", nil)
		}
	}()

	principal, raw, strategyErr := m.bearer.Authenticate(c)
	if strategyErr == nil {
		SetPrincipal(c, principal, raw)
		return c.Next()
	}

	switch {
	case errors.Is(strategyErr, ErrMissingToken), errors.Is(strategyErr, ErrNoCredentials):
		return apperrors.NewUnauthorized("Authentication token is missing")
	case IsVerificationFailure(strategyErr):
		m.recordFailure(m.bearer.Name(), strategyErr)
		return apperrors.NewUnauthorized("Unauthorized Access - Please login")
	default:
		m.logger.Error("authentication channel error",
			zap.String("channel", m.bearer.Name()),
			zap.Error(strategyErr))
		return apperrors.NewInternal("Authentication error occurred", strategyErr)
	}
}

func (m *Middleware) recordFailure(channel string, err error) {
	m.logger.Warn("authentication channel failed",
		zap.String("channel", channel),
		zap.Error(err))
	if m.metrics != nil {
		m.metrics.RecordAuthFailure(channel, failureReason(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	default:
		return "invalid"
	}
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
}
