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

// PostController handles posts, the feed, likes and comments
type PostController struct {
	postService services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      logger,
	}
}

// Create adds a post
// @Summary Create a post
// @Description Accepts signup, completion and general posts; race announcements are server-generated
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post payload"
// @Success 201 {object} dto.APIResponse "Post created"
// @Failure 400 {object} dto.ErrorResponse "Invalid type or missing race"
// @Router /posts [post]
func (c *PostController) Create(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	postID, err := c.postService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(gin.H{"id": postID}, "Post created"))
}

// Feed returns the merged activity feed
// @Summary Activity feed
// @Description Posts merged with recently approved races, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /feed [get]
func (c *PostController) Feed(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	items, pagination, err := c.postService.Feed(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: pagination,
	}, ""))
}

// Like adds the caller's like to a post
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse "Liked"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *PostController) Like(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	postID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid post ID"))
		return
	}

	likedBy, err := c.postService.Like(ctx.Request.Context(), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"likedBy": likedBy}, "Liked"))
}

// Unlike removes the caller's like from a post
// @Summary Unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse "Like removed"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [delete]
func (c *PostController) Unlike(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	postID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid post ID"))
		return
	}

	likedBy, err := c.postService.Unlike(ctx.Request.Context(), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"likedBy": likedBy}, "Like removed"))
}

// Comment appends a comment to a post
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment text"
// @Success 201 {object} dto.APIResponse "Comment added"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *PostController) Comment(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	postID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid post ID"))
		return
	}

	var req dto.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	comments, err := c.postService.Comment(ctx.Request.Context(), postID, userID, req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(gin.H{"comments": comments}, "Comment added"))
}
