package handlers

import (
	"auth-account/internal/services"
	"auth-account/utils"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ContextUserID    = "user_id"
	ContextRequestID = "request_id"
	HeaderRequestID  = "X-Request-ID"
)

type Middleware struct {
	jwtService *services.JWTService
	logger     *zap.Logger
}

func NewMiddleware(jwtService *services.JWTService, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth accepts "Authorization: Bearer <token>" and stores the
// caller's user id in the gin context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("Not authenticated"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("Invalid token"))
			return
		}

		claims, err := m.jwtService.VerifyToken(strings.TrimSpace(tokenString))
		if err != nil {
			m.logger.Debug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			message := "Invalid token"
			if errors.Is(err, services.ErrTokenExpired) {
				message = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse(message))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

func userIDFrom(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// RequestID reuses an incoming X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(ContextRequestID)))
	}
}

// NewRouter returns a gin engine with recovery, request ids and access
// logging installed.
func NewRouter(logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	return router
}
