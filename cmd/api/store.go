package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/config"
	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// openStore builds the configured document store and a cleanup func for it.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (store.StateStore, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendFile:
		logger.Info("using file store", zap.String("path", cfg.FilePath))
		return store.NewFileStore(cfg.FilePath), noop, nil

	case config.BackendMemory:
		logger.Warn("using memory store; state is lost on exit")
		return store.NewMemoryStore(), noop, nil

	case config.BackendPostgres:
		db, err := store.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres store")
		return pg, func() { db.Close() }, nil

	case config.BackendMongo:
		ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		logger.Info("using mongodb store", zap.String("db", cfg.MongoDBName))
		return ms, func() {
			if err := ms.Close(context.Background()); err != nil {
				logger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}, nil

	case config.BackendDynamo:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		logger.Info("using dynamodb store", zap.String("table", cfg.DynamoTable))
		return store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), noop, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
