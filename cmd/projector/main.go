package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/config"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/projection"
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
		baseLogger.Fatal("KAFKA_BROKERS must be set for the projector")
	}
	if cfg.Store.PostgresDSN == "" {
		baseLogger.Fatal("DATABASE_URL must be set for the projector")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseLogger.Info("projector starting",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.ProjectorGroupID))

	db, err := store.ConnectPostgres(cfg.Store.PostgresDSN)
	if err != nil {
		baseLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	readStore := store.NewPostgresProjectionStore(db)
	if err := readStore.EnsureSchema(ctx); err != nil {
		baseLogger.Fatal("failed to prepare read tables", zap.Error(err))
	}

	projector := projection.NewProjector(readStore, baseLogger.Named("projection"))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ProjectorGroupID, baseLogger.Named("kafka"))
	defer consumer.Close()

	if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		baseLogger.Error("consumer stopped", zap.Error(err))
	}
	baseLogger.Info("projector stopped")
}
