package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civic-legal-service/internal/api/http"
	"github.com/spec-kit/civic-legal-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/config"
	"github.com/spec-kit/civic-legal-service/internal/events"
	"github.com/spec-kit/civic-legal-service/internal/observability"
	"github.com/spec-kit/civic-legal-service/internal/persistence"
	"github.com/spec-kit/civic-legal-service/internal/repository"
	"github.com/spec-kit/civic-legal-service/internal/service"
	"github.com/spec-kit/civic-legal-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)

	tokens := auth.NewTokenService(cfg.Auth, redis.Client, logger)
	sessions := auth.NewSessionManager(cfg.Session, redis.Client)
	google := auth.NewGoogleOAuth(cfg.OAuth)
	teardown := auth.NewTeardown(tokens, sessions, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		RoleRepo:   roleRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	authMiddleware := auth.NewMiddleware(tokens, sessions, logger, metrics)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, teardown),
		OAuth:          handlers.NewOAuthHandler(google, authService, sessions, logger, "/"),
		Admin:          handlers.NewAdminHandler(roleRepo, metrics),
		AuthMiddleware: authMiddleware,
		RoleRepo:       roleRepo,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
