package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	repo "github.com/joseph-ayodele/invoice-renamer/internal/repository"
)

// ConnectDB opens the configured database. inmem forces a throwaway SQLite
// database regardless of DB_URL.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, inmem bool, logger *slog.Logger) (*repo.DB, error) {
	dsn := cfg.DSN
	if inmem {
		dsn = ":memory:"
	}
	return repo.Open(ctx, repo.Config{
		DSN:             dsn,
		MaxConns:        cfg.MaxConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
		DialTimeout:     cfg.DialTimeout,
	}, logger)
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, logger *slog.Logger, timeout time.Duration) error {
	err := repo.HealthCheck(ctx, db, timeout, logger)
	if err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repo.DB, logger *slog.Logger) {
	repo.Close(db, logger)
}
