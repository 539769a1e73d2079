package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/devtrack/internal/api/http"
	"github.com/spec-kit/devtrack/internal/api/http/handlers"
	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/cache"
	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/events"
	"github.com/spec-kit/devtrack/internal/observability"
	"github.com/spec-kit/devtrack/internal/persistence"
	"github.com/spec-kit/devtrack/internal/repository"
	"github.com/spec-kit/devtrack/internal/service"
	"github.com/spec-kit/devtrack/internal/worker"
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

	pool := pg.PoolHandle()
	issueRepo := repository.NewIssueRepository(pool)
	developerRepo := repository.NewDeveloperRepository(pool)
	featureRepo := repository.NewFeatureRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	historyRepo := repository.NewIssueHistoryRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	analyticsCache := cache.NewAnalyticsCache(redis.Client, cfg.Analytics.CacheTTL(), logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	issueService := service.NewIssueService(logger, service.IssueDependencies{
		IssueRepo:     issueRepo,
		FeatureRepo:   featureRepo,
		ProjectRepo:   projectRepo,
		DeveloperRepo: developerRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
	})
	recurrenceService := service.NewRecurrenceService(cfg.Analytics, logger, service.RecurrenceDependencies{
		IssueRepo:  issueRepo,
		Dispatcher: dispatcher,
	})
	productivityService := service.NewProductivityService(cfg.Analytics, logger, service.ProductivityDependencies{
		IssueRepo:     issueRepo,
		DeveloperRepo: developerRepo,
	})
	stabilityService := service.NewStabilityService(cfg.Analytics, logger, service.StabilityDependencies{
		IssueRepo:   issueRepo,
		FeatureRepo: featureRepo,
		ProjectRepo: projectRepo,
	})
	hotspotService := service.NewHotspotService(cfg.Analytics, logger, service.HotspotDependencies{
		IssueRepo:   issueRepo,
		FeatureRepo: featureRepo,
		ProjectRepo: projectRepo,
		Cache:       analyticsCache,
		Metrics:     metrics,
	})
	timeToFixService := service.NewTimeToFixService(cfg.Analytics, logger, service.TimeToFixDependencies{
		IssueRepo:     issueRepo,
		DeveloperRepo: developerRepo,
		ProjectRepo:   projectRepo,
	})
	authService := service.NewAuthService(cfg.Auth, logger, service.AuthDependencies{
		DeveloperRepo: developerRepo,
		TokenManager:  tokenManager,
	})
	developerService := service.NewDeveloperService(cfg.Auth, logger, service.DeveloperDependencies{
		DeveloperRepo: developerRepo,
	})
	projectService := service.NewProjectService(logger, service.ProjectDependencies{
		ProjectRepo: projectRepo,
		FeatureRepo: featureRepo,
	})

	worker.NewRecurrenceWorker(recurrenceService, logger).Register(dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, developerRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Issues:         handlers.NewIssuesHandler(issueService),
		Catalog:        handlers.NewCatalogHandler(projectService),
		Developers:     handlers.NewDevelopersHandler(developerService, authService),
		Analytics:      handlers.NewAnalyticsHandler(productivityService, stabilityService, hotspotService, timeToFixService, recurrenceService),
		AuthMiddleware: authMiddleware,
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
