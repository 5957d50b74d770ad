package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// GearController handles shared gear checklists
type GearController struct {
	gearService services.GearService
}

// NewGearController creates a new GearController
func NewGearController(gearService services.GearService) *GearController {
	return &GearController{gearService: gearService}
}

// CreateList adds a gear list to a group
// @Summary Create a gear list
// @Tags gear
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.CreateGearListRequest true "List information"
// @Success 201 {object} dto.APIResponse{data=models.GearList} "Gear list created"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/gear [post]
func (c *GearController) CreateList(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	var req dto.CreateGearListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	list, err := c.gearService.CreateList(ctx.Request.Context(), groupID, userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(list, "Gear list created"))
}

// Lists returns a group's gear lists with items
// @Summary List gear lists
// @Tags gear
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GearList}
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/gear [get]
func (c *GearController) Lists(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	groupID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group ID"))
		return
	}

	lists, err := c.gearService.Lists(ctx.Request.Context(), groupID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lists, ""))
}

// AddItem appends an item to a gear list
// @Summary Add a gear item
// @Tags gear
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listId path int true "Gear list ID"
// @Param request body dto.CreateGearItemRequest true "Item description"
// @Success 201 {object} dto.APIResponse{data=models.GearItem} "Item added"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /gear/{listId}/items [post]
func (c *GearController) AddItem(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	listID, ok := helpers.ParseID(ctx.Param("listId"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid gear list ID"))
		return
	}

	var req dto.CreateGearItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	item, err := c.gearService.AddItem(ctx.Request.Context(), listID, userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(item, "Item added"))
}

// UpdateItem moves an item between needed, claimed and completed
// @Summary Update gear item status
// @Tags gear
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "Gear item ID"
// @Param request body dto.UpdateGearItemRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.GearItem} "Item updated"
// @Failure 403 {object} dto.ErrorResponse "Claimed by someone else"
// @Router /gear/items/{itemId} [put]
func (c *GearController) UpdateItem(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	itemID, ok := helpers.ParseID(ctx.Param("itemId"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid gear item ID"))
		return
	}

	var req dto.UpdateGearItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	item, err := c.gearService.UpdateItemStatus(ctx.Request.Context(), itemID, userID, models.GearItemStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, "Item updated"))
}

// DeleteItem removes a gear item
// @Summary Delete a gear item
// @Tags gear
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "Gear item ID"
// @Success 200 {object} dto.APIResponse "Item deleted"
// @Failure 403 {object} dto.ErrorResponse "Creator or moderator only"
// @Router /gear/items/{itemId} [delete]
func (c *GearController) DeleteItem(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	itemID, ok := helpers.ParseID(ctx.Param("itemId"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid gear item ID"))
		return
	}

	if err := c.gearService.DeleteItem(ctx.Request.Context(), itemID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Item deleted"))
}
