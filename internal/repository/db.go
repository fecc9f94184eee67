package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open connects to the store named by the DSN. "postgres://" (or
// "postgresql://") selects the pgx stdlib driver; anything else is treated as
// a sqlite file path. Both drivers sit behind database/sql so the
// repositories stay driver-agnostic.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("db.connect", "driver", driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("db.connect_failed", "driver", driver, "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	if driver == "sqlite" {
		// single writer; serialize through one connection to avoid SQLITE_BUSY
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				logger.Error("db.pragma_failed", "pragma", pragma, "error", err)
				return nil, err
			}
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("db.ping_failed", "driver", driver, "error", err)
		return nil, err
	}

	logger.Info("db.connected", "driver", driver)
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("db.close_failed", "error", err)
		return
	}
	logger.Info("db.closed")
}

// HealthCheck pings the store with a bounded timeout.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
