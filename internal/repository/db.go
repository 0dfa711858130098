package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthfolio/labingest/internal/common"
)

// Open connects the store selected by cfg.Driver and runs its migrations.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (DocumentRepository, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := openPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(ctx, pool, logger)
	case "sqlite":
		return NewSQLiteRepository(cfg.DSN, logger)
	case "memory":
		return NewMemoryRepository(logger), nil
	default:
		return nil, common.NewAppError(common.CodeConfig, "unknown database driver "+cfg.Driver, nil)
	}
}

// openPool creates a pgx pool from the database configuration.
func openPool(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database", "driver", cfg.Driver)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, common.NewAppError(common.CodeConfig, "invalid database DSN", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "labingest"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "connecting to database", err)
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the store to catch DSN and connectivity issues early.
func HealthCheck(ctx context.Context, repo DocumentRepository, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := repo.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return common.NewAppError(common.CodeDatabase, "database ping failed", err)
	}
	logger.Debug("database ping successful")
	return nil
}
