package main

import (
	"auth-account/internal/config"
	"auth-account/internal/database/redis"
	"auth-account/internal/event"
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

	logger, syncLogger, err := logging.New(cfg.Environment, cfg.LogDir, "auth_service")
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

	var limiter services.RateLimiter = services.NoopRateLimiter{}
	if cfg.RedisCfg.Enabled() {
		redisClient, err := redis.NewRedisClient(ctx, cfg.RedisCfg)
		if err != nil {
			logger.Fatal("redis unavailable", zap.Error(err))
		}
		defer redisClient.Close()
		limiter = services.NewRedisRateLimiter(redisClient, "otp_requests", cfg.OTPCfg.RequestLimit, cfg.OTPCfg.RequestWindow)
	} else {
		logger.Info("redis not configured, otp requests are not throttled")
	}

	notifier, closeNotifier, err := event.NewNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("notifier unavailable", zap.Error(err))
	}
	defer closeNotifier()

	// services
	jwtService := services.NewJWTService(cfg.AuthCfg.JWTSecret, cfg.AuthCfg.Issuer, cfg.AuthCfg.AccessTokenTTL)
	otpService := services.NewOTPService(store, cfg.OTPCfg.TTL)
	lockoutService := services.NewLockoutService(store, cfg.LockoutCfg.Threshold)
	registrationService := services.NewRegistrationService(store, logger)
	authService := services.NewAuthService(store, jwtService, otpService, lockoutService, limiter, notifier, logger,
		services.AuthServiceOptions{ExposeOTP: cfg.OTPCfg.ExposeInResponse})

	// handlers
	router := handlers.NewRouter(logger)
	handlers.NewHealthHandler("auth", store, logger).RegisterRoutes(router)
	handlers.NewAuthHandler(registrationService, authService, logger).RegisterRoutes(router)

	if err := server.Run(ctx, ":"+cfg.AuthPort, router, logger); err != nil {
		logger.Error("auth service stopped", zap.Error(err))
	}
}
