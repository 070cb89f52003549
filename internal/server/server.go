// Package server holds the startup plumbing shared by the two binaries.
package server

import (
	"auth-account/internal/config"
	"auth-account/internal/database"
	"auth-account/internal/database/postgres"
	"auth-account/internal/database/sqlite"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	connectAttempts = 10
	connectWait     = 3 * time.Second
	shutdownTimeout = 10 * time.Second
)

// OpenDatabase connects to the configured driver and applies the schema.
func OpenDatabase(ctx context.Context, cfg *config.ServiceConfig, logger *zap.Logger) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.DatabaseCfg.Driver {
	case "postgres":
		logger.Info("connecting to postgres",
			zap.String("host", cfg.PostgresCfg.Host),
			zap.String("port", cfg.PostgresCfg.Port),
			zap.String("dbname", cfg.PostgresCfg.DBname))
		db, err = postgres.ConnectWithRetry(ctx, cfg.PostgresCfg, logger, connectAttempts, connectWait)
	case "sqlite":
		logger.Info("opening sqlite", zap.String("path", cfg.SQLiteCfg.Path))
		db, err = sqlite.Open(ctx, cfg.SQLiteCfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseCfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
