package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/jobs"
	"github.com/spec-kit/complaint-service/internal/mq"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/storage"
	"github.com/spec-kit/complaint-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

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

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo      repository.UserRepository
		complaintRepo repository.ComplaintRepository
		pgHealth      handlers.Pinger
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		complaintRepo = repository.NewComplaintRepository(pg.PoolHandle())
		pgHealth = pg
	} else {
		userRepo = repository.NewMemoryUserRepository()
		complaintRepo = repository.NewMemoryComplaintRepository()
	}

	revocations := auth.NewRedisRevocationStore(redis.Client)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		Revocations: revocations,
		Logger:      logger,
	})
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revocations, logger)

	mailer, closeMailer := buildMailer(cfg, logger)
	defer closeMailer()

	pool := worker.NewPool(cfg.Notification.Workers, cfg.Notification.QueueSize, logger)
	pool.Start()

	dispatcher := notification.NewDispatcher(notification.DispatcherDependencies{
		Pool:     pool,
		Mailer:   mailer,
		Resolver: notification.NewDirectoryResolver(userRepo),
		Logger:   logger,
		Metrics:  metrics,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		Notifier:      dispatcher,
		Logger:        logger,
	})

	files, err := storage.NewLocalFileStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxBytes())
	if err != nil {
		logger.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	refresher, err := jobs.NewStatsRefresher(cfg.Jobs.StatsRefreshSchedule, complaintService, metrics, logger)
	if err != nil {
		logger.Fatal("failed to schedule stats refresh", zap.Error(err))
	}
	refresher.Start()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimit(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pgHealth, redis),
		Users:          handlers.NewUsersHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, files),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
		UploadDir:      files.Dir(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	refresher.Stop(shutdownCtx)
	if err := pool.Stop(shutdownCtx); err != nil {
		logger.Warn("notification pool did not drain", zap.Int("pending", pool.Pending()), zap.Error(err))
	}
}

// buildMailer selects the notification transport. An unreachable broker falls back to logging.
func buildMailer(cfg *config.Config, logger *zap.Logger) (notification.Mailer, func()) {
	switch cfg.Notification.Transport {
	case config.TransportSMTP:
		logger.Info("notifications via smtp", zap.String("addr", cfg.SMTP.Addr()))
		return notification.NewSMTPMailer(cfg.SMTP, cfg.Notification.EmailFrom), func() {}
	case config.TransportAMQP:
		publisher, err := mq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			logger.Error("rabbitmq unavailable; logging notifications instead", zap.Error(err))
			break
		}
		logger.Info("notifications via rabbitmq", zap.String("exchange", cfg.Rabbit.Exchange))
		return notification.NewAMQPMailer(publisher, cfg.Rabbit.RoutingKey), func() { _ = publisher.Close() }
	}
	return notification.NewLogMailer(logger, cfg.Notification.EmailFrom), func() {}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
