package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cura-agent/roster-service/internal/api/http"
	"github.com/cura-agent/roster-service/internal/api/http/handlers"
	"github.com/cura-agent/roster-service/internal/auth"
	"github.com/cura-agent/roster-service/internal/config"
	"github.com/cura-agent/roster-service/internal/events"
	"github.com/cura-agent/roster-service/internal/notify"
	"github.com/cura-agent/roster-service/internal/observability"
	"github.com/cura-agent/roster-service/internal/persistence"
	"github.com/cura-agent/roster-service/internal/repository"
	"github.com/cura-agent/roster-service/internal/roster"
	"github.com/cura-agent/roster-service/internal/service"
	"github.com/cura-agent/roster-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required for admin accounts")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	var rosterRepo repository.RosterRepository
	if cfg.Roster.PersistToPostgres {
		rosterRepo = repository.NewRosterRepository(pool)
	}

	sinks := []notify.Named{
		{Name: "log", Sink: notify.NewLogSink(logger)},
		{Name: "dispatcher", Sink: notify.NewDispatcherSink(dispatcher)},
	}

	var (
		feed        *notify.FeedSink
		revocations auth.Revocations = auth.NewMemoryRevocations()
	)
	if redis.Enabled() {
		feed = notify.NewFeedSink(redis.Client, cfg.Notification.FeedSize, cfg.Notification.FeedTTL())
		sinks = append(sinks, notify.Named{Name: "feed", Sink: feed})
		revocations = auth.NewRedisRevocations(redis.Client)
	}

	worker.NewAuditLog(logger).Register(dispatcher)

	var forwarder *worker.EventForwarder
	if len(cfg.Notification.KafkaBrokers) > 0 {
		noticeWriter := notify.NewAsyncKafkaWriter(logger, cfg.Notification.KafkaBrokers, cfg.Notification.KafkaTopic)
		noticeSink := notify.NewKafkaSink(noticeWriter, cfg.Notification.KafkaTimeout())
		defer noticeSink.Close() //nolint:errcheck
		sinks = append(sinks, notify.Named{Name: "kafka", Sink: noticeSink})

		eventWriter := notify.NewKafkaWriter(logger, cfg.Notification.KafkaBrokers, cfg.Notification.KafkaEventsTopic)
		forwarder = worker.NewEventForwarder(eventWriter, logger, cfg.Notification.EventBuffer)
		forwarder.Register(dispatcher)
		forwarder.Start(ctx)
	}

	seeds, err := service.LoadSeeds(ctx, cfg.Roster.SeedFile, rosterRepo, logger)
	if err != nil {
		logger.Fatal("failed to load roster seeds", zap.Error(err))
	}
	registry := roster.NewRegistry(seeds, roster.WithSink(notify.NewFanout(metrics, sinks...)))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:       accountRepo,
		PasswordResetRepo: resetRepo,
		Revocations:       revocations,
		Logger:            logger,
	})
	rosterService := service.NewRosterService(service.RosterDependencies{
		Registry:   registry,
		RosterRepo: rosterRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo, authService.Revocations())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.ExposeResetToken),
		Settings:       handlers.NewSettingsHandler(authService),
		Rosters:        handlers.NewRosterHandler(rosterService),
		Notifications:  handlers.NewNotificationsHandler(feed),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	if forwarder != nil {
		if err := forwarder.Stop(); err != nil {
			logger.Warn("event forwarder stop", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
