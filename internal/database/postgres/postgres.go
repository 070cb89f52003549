package postgres

import (
	"auth-account/internal/config"
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func connString(cfg config.PostgresConfig, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbname, cfg.SSLMode)
}

// ConnectAndCreateDB connects to the maintenance database, creates the
// target database when it does not exist yet, then connects to it.
func ConnectAndCreateDB(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*sqlx.DB, error) {
	defaultDB, err := sqlx.ConnectContext(ctx, "postgres", connString(cfg, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := defaultDB.GetContext(ctx, &exists, checkQuery, cfg.DBname); err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		if _, err := defaultDB.ExecContext(ctx, createQuery); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		logger.Info("database created", zap.String("database", cfg.DBname))
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connString(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// ConnectWithRetry keeps calling ConnectAndCreateDB every wait until it
// succeeds or attempts run out.
func ConnectWithRetry(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger, attempts int, wait time.Duration) (*sqlx.DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := ConnectAndCreateDB(ctx, cfg, logger)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database connection failed, retrying",
			zap.Int("attempt", i),
			zap.Duration("next_retry_in", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}
