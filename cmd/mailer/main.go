package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/mq"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.Rabbit.URL,
		Exchange: cfg.Rabbit.Exchange,
		Queue:    cfg.Rabbit.Queue,
		Keys:     []string{cfg.Rabbit.RoutingKey},
		Prefetch: cfg.Rabbit.Prefetch,
		Tag:      cfg.App.Name + "-mailer",
	})
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer consumer.Close() //nolint:errcheck

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}

	relay := notification.NewRelay(notification.NewSMTPMailer(cfg.SMTP, cfg.Notification.EmailFrom), logger, nil)
	logger.Info("mail relay started",
		zap.String("queue", cfg.Rabbit.Queue),
		zap.String("smtp", cfg.SMTP.Addr()))

	if err := relay.Run(ctx, deliveries); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mail relay stopped", zap.Error(err))
	}
	logger.Info("mail relay shut down")
}
