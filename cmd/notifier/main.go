package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/config"
	"github.com/example/stock-ledger/internal/email"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"github.com/example/stock-ledger/internal/notification"
	"github.com/example/stock-ledger/pkg/logger"
)

func main() {
	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		baseLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	if !cfg.KafkaEnabled() {
		baseLogger.Fatal("KAFKA_BROKERS must be set for the notifier")
	}
	if cfg.SMTP.AdminEmail == "" {
		baseLogger.Fatal("ADMIN_EMAIL must be set for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseLogger.Info("notifier starting",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.String("smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port),
		zap.String("admin_email", cfg.SMTP.AdminEmail))

	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	handler := notification.NewHandler(emailSvc, cfg.SMTP.AdminEmail, baseLogger.Named("notification"))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, baseLogger.Named("kafka"))
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		baseLogger.Error("consumer stopped", zap.Error(err))
	}
	baseLogger.Info("notifier stopped")
}
