package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpadapter "mailtrack/internal/adapter/http"
	"mailtrack/internal/adapter/postgres"
	"mailtrack/internal/adapter/queue"
	smtpadapter "mailtrack/internal/adapter/smtp"
	"mailtrack/internal/adapter/usecase"
	"mailtrack/internal/adapter/worker"
	"mailtrack/internal/config"
	"mailtrack/internal/db"
)

// main is the entry point of the mailtrack service. It loads configuration,
// optionally runs database migrations, wires the repositories, queue and
// usecases, then starts the HTTP server, the tracking-event consumer and the
// optional sweep loop. On receiving a termination signal it gracefully shuts
// everything down.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.Seed {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		}
	}

	redisClient := redis.NewClient(cfg.Redis.Options())
	defer redisClient.Close()

	mailer, err := smtpadapter.NewMailer(cfg.SMTP)
	if err != nil {
		logger.Error("mailer init error", slog.Any("error", err))
		os.Exit(1)
	}

	deliveries := postgres.NewDeliveryRepository(pool)
	schedules := postgres.NewScheduleRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	analytics := postgres.NewAnalyticsRepository(pool)

	pub := queue.NewPublisher(redisClient, cfg.Redis.QueueKey, logger)
	tracking := usecase.NewTrackingUseCase(deliveries, analytics, pub, logger)
	sweep := usecase.NewSweepUseCase(schedules, campaigns, deliveries, mailer, cfg.Scheduler.BaseURL, logger)
	mailing := usecase.NewMailingUseCase(deliveries, schedules, campaigns, analytics, mailer, cfg.Scheduler.BaseURL)

	consumer := queue.NewConsumer(redisClient, cfg.Redis.QueueKey, tracking, logger)
	consumer.Start(ctx)

	sweeper := worker.NewSweeper(sweep, cfg.Scheduler.PollInterval, logger)
	sweeper.Start(ctx)

	handler := httpadapter.NewHandler(tracking, sweep, mailing, cfg.Scheduler.Secret, cfg.Scheduler.BaseURL, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}

	consumer.Wait()
	sweeper.Wait()
}
