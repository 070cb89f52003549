package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Development environments get the console
// encoder at debug level; everything else gets JSON at info level. When logDir
// is set, output is also appended to logDir/<service>/log_YYYY-MM-DD.log.
func New(environment, logDir, service string) (*zap.Logger, func(), error) {
	var (
		base *zap.Logger
		err  error
	)
	if environment == "development" {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	if logDir == "" {
		return base.With(zap.String("service", service)), func() { _ = base.Sync() }, nil
	}

	file, err := openDailyFile(logDir, service, time.Now())
	if err != nil {
		return nil, nil, err
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(file),
		zap.InfoLevel,
	)
	logger := base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})).With(zap.String("service", service))

	cleanup := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger, cleanup, nil
}

func openDailyFile(logDir, service string, now time.Time) (*os.File, error) {
	dir := filepath.Join(logDir, service)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("log_%s.log", now.Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
