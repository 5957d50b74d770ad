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

// GroupController handles group endpoints
type GroupController struct {
	groupService services.GroupService
	logger       zerolog.Logger
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService, logger zerolog.Logger) *GroupController {
	return &GroupController{
		groupService: groupService,
		logger:       logger,
	}
}

// Create makes a new standalone group
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGroupRequest true "Group information"
// @Success 201 {object} dto.APIResponse{data=dto.GroupResponse} "Group created"
// @Router /groups [post]
func (c *GroupController) Create(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var req dto.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	group, err := c.groupService.Create(ctx.Request.Context(), req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group, "Group created"))
}

// Search finds groups by name, sport type and city
// @Summary Search groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param sportType query string false "Sport type filter"
// @Param city query string false "City filter"
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupResponse}
// @Router /groups [get]
func (c *GroupController) Search(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	groups, err := c.groupService.Search(ctx.Request.Context(),
		ctx.Query("search"), ctx.Query("sportType"), ctx.Query("city"), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups, ""))
}

// MyGroups lists the caller's groups with unread counts
// @Summary List own groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MyGroupResponse}
// @Router /groups/mine [get]
func (c *GroupController) MyGroups(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	groups, err := c.groupService.MyGroups(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups, ""))
}

// TotalUnread returns the unread group-message total across the caller's groups
// @Summary Total unread group messages
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /groups/unread [get]
func (c *GroupController) TotalUnread(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	count, err := c.groupService.TotalUnread(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{UnreadCount: count}, ""))
}

// Get returns one group
// @Summary Get group by ID
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.GroupResponse}
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Router /groups/{id} [get]
func (c *GroupController) Get(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	group, err := c.groupService.GetByID(ctx.Request.Context(), groupID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group, ""))
}

// GetByRace returns the participant group of a race
// @Summary Get race group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param raceId path int true "Race ID"
// @Success 200 {object} dto.APIResponse{data=dto.GroupResponse}
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Router /races/{raceId}/group [get]
func (c *GroupController) GetByRace(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	group, err := c.groupService.GetByRaceID(ctx.Request.Context(), raceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group, ""))
}

// Join adds the caller to a group
// @Summary Join a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.JoinGroupRequest false "Password for protected groups"
// @Success 200 {object} dto.APIResponse{data=dto.GroupResponse} "Joined group"
// @Failure 403 {object} dto.ErrorResponse "Password required or incorrect"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /groups/{id}/join [post]
func (c *GroupController) Join(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	var req dto.JoinGroupRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			dto.HandleValidationError(ctx, err)
			return
		}
	}

	group, err := c.groupService.Join(ctx.Request.Context(), groupID, userID, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group, "Joined group"))
}

// Leave removes the caller from a group
// @Summary Leave a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse "Left group"
// @Failure 409 {object} dto.ErrorResponse "Owner cannot leave"
// @Router /groups/{id}/leave [post]
func (c *GroupController) Leave(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	if err := c.groupService.Leave(ctx.Request.Context(), groupID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Left group"))
}

// Members lists a group's members
// @Summary List group members
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GroupMember}
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/members [get]
func (c *GroupController) Members(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	members, err := c.groupService.Members(ctx.Request.Context(), groupID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(members, ""))
}

// Delete removes a group
// @Summary Delete a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse "Group deleted"
// @Failure 403 {object} dto.ErrorResponse "Owner only"
// @Router /groups/{id} [delete]
func (c *GroupController) Delete(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	if err := c.groupService.Delete(ctx.Request.Context(), groupID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Group deleted"))
}
