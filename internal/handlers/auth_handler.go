package handlers

import (
	"auth-account/internal/models"
	"auth-account/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	registrationService services.IRegistrationService
	authService         services.IAuthService
	logger              *zap.Logger
}

func NewAuthHandler(registrationService services.IRegistrationService, authService services.IAuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		registrationService: registrationService,
		authService:         authService,
		logger:              logger,
	}
}

func (a *AuthHandler) RegisterRoutes(router *gin.Engine) {
	accountGr := router.Group("/accounts")

	accountGr.POST("/register", a.Register)
	accountGr.POST("/login", a.Login)
	accountGr.POST("/request-otp", a.RequestOTP)
	// OTP guarded
	accountGr.POST("/unlock-account", a.UnlockAccount)
	accountGr.POST("/reset-password", a.ResetPassword)
}

func (a *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := a.registrationService.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "User registered successfully"})
}

func (a *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := a.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Message:     "Login successful",
		Email:       result.User.Email,
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresInSeconds,
	})
}

func (a *AuthHandler) RequestOTP(c *gin.Context) {
	var req models.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := a.authService.RequestOTP(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.RequestOTPResponse{
		Message: "OTP generated successfully",
		Email:   result.Email,
		UserID:  result.UserID,
		OTP:     result.OTP,
	})
}

func (a *AuthHandler) UnlockAccount(c *gin.Context) {
	var req models.UnlockAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := a.authService.UnlockAccount(c.Request.Context(), req.Email, req.OTP, c.Query("client_timezone"))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Account unlocked successfully"})
}

func (a *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := a.authService.ResetPassword(c.Request.Context(), req.Email, req.NewPassword, req.OTP, c.Query("client_timezone"))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password reset successfully"})
}
