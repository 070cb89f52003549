package main

import (
	"auth-account/internal/config"
	"auth-account/internal/database/minio"
	"auth-account/internal/handlers"
	"auth-account/internal/logging"
	"auth-account/internal/repository"
	"auth-account/internal/server"
	"auth-account/internal/services"
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, syncLogger, err := logging.New(cfg.Environment, cfg.LogDir, "account_service")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer syncLogger()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := server.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	store := repository.NewStore(db)

	// Left nil without minio so avatar uploads report 503.
	var objects services.ObjectStore
	if cfg.MinioCfg.Enabled() {
		minioClient, err := minio.NewMinioClient(ctx, cfg.MinioCfg, logger)
		if err != nil {
			logger.Fatal("object storage unavailable", zap.Error(err))
		}
		objects = minioClient
	}

	jwtService := services.NewJWTService(cfg.AuthCfg.JWTSecret, cfg.AuthCfg.Issuer, cfg.AuthCfg.AccessTokenTTL)
	otpService := services.NewOTPService(store, cfg.OTPCfg.TTL)
	profileService := services.NewProfileService(store, otpService, objects, logger)

	router := handlers.NewRouter(logger)
	middleware := handlers.NewMiddleware(jwtService, logger)
	handlers.NewHealthHandler("account", store, logger).RegisterRoutes(router)
	handlers.NewProfileHandler(profileService, middleware, logger).RegisterRoutes(router)

	if err := server.Run(ctx, ":"+cfg.AccountPort, router, logger); err != nil {
		logger.Error("account service stopped", zap.Error(err))
	}
}
