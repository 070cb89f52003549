package handlers

import (
	"auth-account/internal/models"
	"auth-account/internal/services"
	"auth-account/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService services.IProfileService
	middleware     *Middleware
	logger         *zap.Logger
}

func NewProfileHandler(profileService services.IProfileService, middleware *Middleware, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		middleware:     middleware,
		logger:         logger,
	}
}

func (p *ProfileHandler) RegisterRoutes(router *gin.Engine) {
	profileGr := router.Group("/profiles", p.middleware.RequireAuth())

	profileGr.GET("/profile", p.GetProfile)
	profileGr.PUT("/profile", p.UpdateProfile)
	profileGr.PUT("/update-account", p.ChangeEmail)
	profileGr.PUT("/change-phone", p.ChangePhone)
	profileGr.PUT("/change-password", p.ChangePassword)
	profileGr.GET("/manage-accounts", p.ManageAccounts)
	profileGr.PUT("/avatar", p.UploadAvatar)
}

func (p *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := p.profileService.GetProfile(c.Request.Context(), userIDFrom(c))
	if err != nil {
		respondError(c, p.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (p *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := userIDFrom(c)
	if err := p.profileService.UpdateProfile(c.Request.Context(), userID, req); err != nil {
		respondError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileUpdatedResponse{
		Message: "Profile updated successfully",
		UserID:  userID,
	})
}

// ChangeEmail handles PUT /profiles/update-account.
func (p *ProfileHandler) ChangeEmail(c *gin.Context) {
	var req models.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := p.profileService.ChangeEmail(c.Request.Context(), userIDFrom(c), req, c.Query("client_timezone"))
	if err != nil {
		respondError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Email updated successfully"})
}

func (p *ProfileHandler) ChangePhone(c *gin.Context) {
	var req models.ChangePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := p.profileService.ChangePhone(c.Request.Context(), userIDFrom(c), req, c.Query("client_timezone"))
	if err != nil {
		respondError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Phone number updated successfully"})
}

func (p *ProfileHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := p.profileService.ChangePassword(c.Request.Context(), userIDFrom(c), req); err != nil {
		respondError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password changed successfully"})
}

func (p *ProfileHandler) ManageAccounts(c *gin.Context) {
	users, err := p.profileService.ManageAccounts(c.Request.Context(), userIDFrom(c))
	if err != nil {
		respondError(c, p.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.ManageAccountsResponse{Users: users})
}

func (p *ProfileHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.CreateErrorResponse("file is required"))
		return
	}

	url, err := p.profileService.UploadAvatar(c.Request.Context(), userIDFrom(c), file)
	if err != nil {
		respondError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.AvatarResponse{
		Message:   "Avatar uploaded successfully",
		AvatarURL: url,
	})
}
