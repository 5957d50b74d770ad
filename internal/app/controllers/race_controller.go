package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// maxCSVSize limits race import uploads to 10 MB
const maxCSVSize = 10 << 20

// RaceController handles the race catalog and enrollment endpoints
type RaceController struct {
	raceService       services.RaceService
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewRaceController creates a new RaceController
func NewRaceController(raceService services.RaceService, enrollmentService services.EnrollmentService, logger zerolog.Logger) *RaceController {
	return &RaceController{
		raceService:       raceService,
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// List returns races matching the query filters
// @Summary List races
// @Tags races
// @Produce json
// @Param sportCategory query string false "Sport category filter"
// @Param city query string false "City filter"
// @Param country query string false "Country filter"
// @Param dateFrom query string false "Earliest date (YYYY-MM-DD)"
// @Param dateTo query string false "Latest date (YYYY-MM-DD)"
// @Param search query string false "Name search"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /races [get]
func (c *RaceController) List(ctx *gin.Context) {
	filter := dto.RaceFilter{
		SportCategory: ctx.Query("sportCategory"),
		City:          ctx.Query("city"),
		Country:       ctx.Query("country"),
		DateFrom:      ctx.Query("dateFrom"),
		DateTo:        ctx.Query("dateTo"),
		Search:        ctx.Query("search"),
		Status:        string(models.RaceStatusApproved),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	races, pagination, err := c.raceService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      races,
		Pagination: pagination,
	}, ""))
}

// Get returns one race
// @Summary Get race by ID
// @Tags races
// @Produce json
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse{data=models.Race}
// @Failure 404 {object} dto.ErrorResponse "Race not found"
// @Router /races/{id} [get]
func (c *RaceController) Get(ctx *gin.Context) {
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	race, err := c.raceService.GetByID(ctx.Request.Context(), raceID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(race, ""))
}

// Submit lets a user propose a race; it stays pending until approved
// @Summary Submit a race
// @Tags races
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRaceRequest true "Race information"
// @Success 201 {object} dto.APIResponse{data=models.Race} "Race submitted for review"
// @Failure 409 {object} dto.ErrorResponse "Duplicate race"
// @Router /races [post]
func (c *RaceController) Submit(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var req dto.CreateRaceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	race, err := c.raceService.Create(ctx.Request.Context(), req, &userID, models.RaceStatusPending)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(race, "Race submitted for review"))
}

// Join enrolls the caller in a race
// @Summary Join a race
// @Description Enrolls the caller, provisions the race group when missing and adds the caller to it
// @Tags races
// @Produce json
// @Security BearerAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse{data=dto.JoinRaceResponse} "Joined race"
// @Failure 404 {object} dto.ErrorResponse "Race not found"
// @Router /races/{id}/join [post]
func (c *RaceController) Join(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	response, err := c.enrollmentService.JoinRace(ctx.Request.Context(), raceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Joined race"))
}

// Leave withdraws the caller from a race
// @Summary Leave a race
// @Description Removes the enrollment; group membership is kept
// @Tags races
// @Produce json
// @Security BearerAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse{data=dto.LeaveRaceResponse} "Left race"
// @Failure 404 {object} dto.ErrorResponse "Race not found"
// @Router /races/{id}/leave [post]
func (c *RaceController) Leave(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	response, err := c.enrollmentService.LeaveRace(ctx.Request.Context(), raceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Left race"))
}

// Complete marks a race as completed for the caller
// @Summary Complete a race
// @Description Marks the race completed; the lifetime total grows only on the first completion
// @Tags races
// @Produce json
// @Security BearerAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse{data=dto.CompleteRaceResponse} "Race completed"
// @Failure 404 {object} dto.ErrorResponse "Race not found"
// @Router /races/{id}/complete [post]
func (c *RaceController) Complete(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	response, err := c.enrollmentService.CompleteRace(ctx.Request.Context(), raceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Race completed"))
}

// AdminList returns races in any status for curation
// @Summary List races for curation
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Param status query string false "Status filter (pending, approved, rejected)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/races [get]
func (c *RaceController) AdminList(ctx *gin.Context) {
	filter := dto.RaceFilter{
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	races, pagination, err := c.raceService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      races,
		Pagination: pagination,
	}, ""))
}

// AdminCreate adds a race directly in approved status
// @Summary Create a race
// @Tags admin
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body dto.CreateRaceRequest true "Race information"
// @Success 201 {object} dto.APIResponse{data=models.Race} "Race created"
// @Failure 409 {object} dto.ErrorResponse "Duplicate race"
// @Router /admin/races [post]
func (c *RaceController) AdminCreate(ctx *gin.Context) {
	var req dto.CreateRaceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	race, err := c.raceService.Create(ctx.Request.Context(), req, nil, models.RaceStatusApproved)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(race, "Race created"))
}

// AdminUpdate overwrites a race
// @Summary Update a race
// @Tags admin
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path int true "Race ID"
// @Param request body dto.CreateRaceRequest true "Race information"
// @Success 200 {object} dto.APIResponse{data=models.Race} "Race updated"
// @Router /admin/races/{id} [put]
func (c *RaceController) AdminUpdate(ctx *gin.Context) {
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	var req dto.CreateRaceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	race, err := c.raceService.Update(ctx.Request.Context(), raceID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(race, "Race updated"))
}

// AdminDelete removes a race
// @Summary Delete a race
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse "Race deleted"
// @Router /admin/races/{id} [delete]
func (c *RaceController) AdminDelete(ctx *gin.Context) {
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	if err := c.raceService.Delete(ctx.Request.Context(), raceID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Race deleted"))
}

// AdminApprove publishes a pending race
// @Summary Approve a race
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse "Race approved"
// @Router /admin/races/{id}/approve [post]
func (c *RaceController) AdminApprove(ctx *gin.Context) {
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	if err := c.raceService.Approve(ctx.Request.Context(), raceID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Race approved"))
}

// AdminReject rejects a pending race
// @Summary Reject a race
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Param id path int true "Race ID"
// @Success 200 {object} dto.APIResponse "Race rejected"
// @Router /admin/races/{id}/reject [post]
func (c *RaceController) AdminReject(ctx *gin.Context) {
	raceID, ok := helpers.ParseID(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRaceID)
		return
	}

	if err := c.raceService.Reject(ctx.Request.Context(), raceID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Race rejected"))
}

// AdminImportCSV bulk-imports races from an uploaded CSV file
// @Summary Import races from CSV
// @Description Accepts a CSV with flexible headers; duplicate races are skipped
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BasicAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.APIResponse{data=dto.CSVImportResult} "Import finished"
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed file"
// @Router /admin/races/import [post]
func (c *RaceController) AdminImportCSV(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("csv file is required"))
		return
	}
	if fileHeader.Size > maxCSVSize {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("csv file exceeds the 10MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.raceService.ImportCSV(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("Admin CSV import")

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Import finished"))
}
