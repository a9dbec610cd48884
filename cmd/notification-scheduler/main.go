package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/gym-access-manager/internal/config"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/rabbitmq"
	scheduler "github.com/magabrotheeeer/gym-access-manager/internal/services/notification-scheduler"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	clock, err := civil.NewFixedZoneClock(cfg.TimeZone)
	if err != nil {
		logger.Error("failed to load gym time zone", sl.Err(err))
		os.Exit(1)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	service := scheduler.New(db, clock, logger)
	service.Run(ctx, ch, cfg.ReminderInterval)

	logger.Info("notification-scheduler stopped gracefully")
}
