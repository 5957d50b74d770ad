package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// notificationListLimit caps one notification page
const notificationListLimit = 50

// NotificationController handles the caller's notification inbox
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the caller's notifications with the unread total
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	notifications, err := c.notificationService.List(ctx.Request.Context(), userID, notificationListLimit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	unread, err := c.notificationService.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, ""))
}

// MarkRead marks one notification read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse "Marked read"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	notificationID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid notification ID"))
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), notificationID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Marked read"))
}

// MarkAllRead marks all of the caller's notifications read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "All marked read"
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	if err := c.notificationService.MarkAllRead(ctx.Request.Context(), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "All marked read"))
}

// Delete removes one notification
// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse "Notification deleted"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	notificationID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid notification ID"))
		return
	}

	if err := c.notificationService.Delete(ctx.Request.Context(), notificationID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification deleted"))
}
