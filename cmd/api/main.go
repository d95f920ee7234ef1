package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/api"
	"github.com/example/stock-ledger/internal/auth"
	"github.com/example/stock-ledger/internal/command"
	"github.com/example/stock-ledger/internal/config"
	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"github.com/example/stock-ledger/internal/query"
	"github.com/example/stock-ledger/internal/report"
	"github.com/example/stock-ledger/internal/scheduler"
	"github.com/example/stock-ledger/internal/session"
	"github.com/example/stock-ledger/pkg/logger"
)

func main() {
	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		baseLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zap.ReplaceGlobals(baseLogger)

	if err := cfg.ValidateAPI(); err != nil {
		baseLogger.Fatal("invalid api configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, closeStore, err := openStore(ctx, cfg.Store, baseLogger.Named("store"))
	if err != nil {
		baseLogger.Fatal("failed to open ledger store", zap.Error(err))
	}
	defer closeStore()

	ledgerOpts := []ledger.Option{ledger.WithLogger(baseLogger.Named("ledger"))}
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(producer))
		baseLogger.Info("ledger events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	} else {
		baseLogger.Warn("KAFKA_BROKERS not set, ledger events disabled")
	}
	ledgerSvc := ledger.NewService(stateStore, ledgerOpts...)

	sessions := session.NewRegistry()
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	exporter := report.NewExporter(ledgerSvc, cfg.Report.FilePath, baseLogger.Named("report"))

	if cfg.Report.CronSchedule != "" {
		sched := scheduler.NewScheduler(cfg.Report.CronSchedule, exporter, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("invalid REPORT_CRON_SCHEDULE", zap.Error(err))
		}
		defer sched.Stop()
	}

	handlers := api.NewHandlers(
		command.NewHandler(ledgerSvc, sessions),
		query.NewHandler(ledgerSvc, sessions, baseLogger.Named("query")),
		exporter,
		baseLogger.Named("handlers"),
	)
	authHandlers := api.NewAuthHandlers(auth.NewAuthenticator(stateStore), jwtService, sessions, baseLogger.Named("auth"))
	router := api.NewRouter(api.RouterConfig{
		Handlers:     handlers,
		AuthHandlers: authHandlers,
		JWTService:   jwtService,
		Sessions:     sessions,
		Logger:       baseLogger.Named("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
