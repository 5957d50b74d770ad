package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/filestorage"
)

// maxAvatarSize limits avatar uploads to 5 MB
const maxAvatarSize = 5 << 20

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// UploadController handles file uploads
type UploadController struct {
	userService services.UserService
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(userService services.UserService, storage filestorage.FileStorage, logger zerolog.Logger) *UploadController {
	return &UploadController{
		userService: userService,
		storage:     storage,
		logger:      logger,
	}
}

// UploadAvatar stores a new avatar image for the caller
// @Summary Upload avatar
// @Description Accepts jpg, jpeg, png and gif up to 5MB; the previous avatar file is removed
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Avatar image"
// @Success 200 {object} dto.APIResponse{data=dto.AvatarResponse} "Avatar updated"
// @Failure 400 {object} dto.ErrorResponse "Missing file, bad type or too large"
// @Router /users/me/avatar [post]
func (c *UploadController) UploadAvatar(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("avatar file is required"))
		return
	}

	if fileHeader.Size > maxAvatarSize {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("avatar exceeds the 5MB limit"))
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExtensions[ext] {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("avatar must be a jpg, jpeg, png or gif image"))
		return
	}

	path, err := c.storage.SaveFileWithPath(fileHeader, "avatars")
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to store avatar")
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.userService.UpdateAvatar(ctx.Request.Context(), userID, path); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AvatarResponse{Avatar: path}, "Avatar updated"))
}
