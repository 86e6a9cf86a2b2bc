package db

import (
	"context"
	"fmt"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// InitDB подключается к PostgreSQL и применяет миграции.
//
// Подключение и миграции повторяются через config.RetryWithBackoff
// при ошибках соединения.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var pool *pgxpool.Pool
	err := config.RetryWithBackoff(ctx, func() error {
		p, innerErr := pgxpool.New(ctx, dsn)
		if innerErr != nil {
			return innerErr
		}
		if innerErr = p.Ping(ctx); innerErr != nil {
			p.Close()
			return innerErr
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db after retries: %w", err)
	}

	logger.Info("connected to PostgreSQL")

	if err := config.RetryWithBackoff(ctx, func() error {
		return RunMigrations(dsn, logger)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}

	return pool, nil
}
