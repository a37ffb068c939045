package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/config"
	"github.com/spec-kit/civic-legal-service/internal/observability"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: timeout, error
// envelope, request logging, CORS and rate limiting.
func RegisterMiddlewares(app *fiber.App, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) {
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, cfg.App.IsDevelopment()))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(cors.New(cors.Config{
		AllowCredentials: false,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	}))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every error in the platform envelope
// {success, message, data}. Stack detail is attached only in development.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, development bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternal("", fmt.Errorf("panic: %v", r))
			}
			if err == nil {
				return
			}

			var status int
			var message string
			var data interface{}

			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
				message = fiberErr.Message
			} else {
				domainErr := apperrors.ToDomainError(err)
				status = domainErr.HTTPStatus
				message = domainErr.Message
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				if status >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.Error(domainErr))
					if development {
						detail := fiber.Map{"message": domainErr.Error()}
						if cause := domainErr.Unwrap(); cause != nil {
							detail["stack"] = fmt.Sprintf("%+v", cause)
						}
						data = detail
					}
				}
			}

			c.Status(status)
			_ = c.JSON(fiber.Map{
				"success": false,
				"message": message,
				"data":    data,
			})
			err = nil
		}()
		return c.Next()
	}
}
