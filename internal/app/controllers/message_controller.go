package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// groupHistoryLimit caps how many group messages one fetch returns
const groupHistoryLimit = 100

// MessageController handles direct messages and group chat history
type MessageController struct {
	messageService services.MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		logger:         logger,
	}
}

// Conversations lists the caller's conversations
// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConversationResponse}
// @Router /conversations [get]
func (c *MessageController) Conversations(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	conversations, err := c.messageService.Conversations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conversations, ""))
}

// Open returns the conversation with another user, creating it on first
// contact and marking it read
// @Summary Open a conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse
// @Router /conversations/{userId} [get]
func (c *MessageController) Open(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	otherID, ok := helpers.ParseID(ctx.Param("userId"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user ID"))
		return
	}

	conversation, messages, err := c.messageService.OpenConversation(ctx.Request.Context(), userID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"conversation": conversation,
		"messages":     messages,
	}, ""))
}

// Send delivers a direct message
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Param request body dto.SendMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Message sent"
// @Router /conversations/{userId}/messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	otherID, ok := helpers.ParseID(ctx.Param("userId"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user ID"))
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	message, err := c.messageService.SendDirect(ctx.Request.Context(), userID, otherID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message, "Message sent"))
}

// GroupHistory returns a group's chat history for a member
// @Summary Group chat history
// @Description Fetching marks the group's messages read for the caller
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GroupMessage}
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/messages [get]
func (c *MessageController) GroupHistory(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	messages, err := c.messageService.GroupMessages(ctx.Request.Context(), groupID, userID, groupHistoryLimit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages, ""))
}

// SendToGroup posts a message to a group chat over HTTP
// @Summary Send a group message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.SendMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=models.GroupMessage} "Message sent"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/messages [post]
func (c *MessageController) SendToGroup(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	message, err := c.messageService.SendGroupMessage(ctx.Request.Context(), groupID, userID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message, "Message sent"))
}
