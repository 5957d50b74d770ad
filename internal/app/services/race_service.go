package services

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/csvimport"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// RaceService handles the race catalog: listing, curation and bulk import
type RaceService interface {
	List(ctx context.Context, filter dto.RaceFilter, page, size int) ([]*models.Race, dto.PaginationInfo, error)
	GetByID(ctx context.Context, id int64) (*models.Race, error)
	Create(ctx context.Context, req dto.CreateRaceRequest, createdBy *int64, status models.RaceStatus) (*models.Race, error)
	Update(ctx context.Context, id int64, req dto.CreateRaceRequest) (*models.Race, error)
	Delete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	ImportCSV(ctx context.Context, r io.Reader) (*dto.CSVImportResult, error)
}

type raceService struct {
	raceRepo *repositories.RaceRepository
	postRepo *repositories.PostRepository
	logger   zerolog.Logger
}

// NewRaceService creates a new RaceService
func NewRaceService(raceRepo *repositories.RaceRepository, postRepo *repositories.PostRepository, logger zerolog.Logger) RaceService {
	return &raceService{
		raceRepo: raceRepo,
		postRepo: postRepo,
		logger:   logger,
	}
}

// parseDate parses a YYYY-MM-DD value, returning nil for empty input
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid date format, expected YYYY-MM-DD")
	}
	return &t, nil
}

// List retrieves races matching the filter with pagination
func (s *raceService) List(ctx context.Context, filter dto.RaceFilter, page, size int) ([]*models.Race, dto.PaginationInfo, error) {
	offset := uint64((page - 1) * size)

	total, err := s.raceRepo.Count(ctx, filter)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	races, err := s.raceRepo.List(ctx, filter, offset, size)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return races, helpers.NewPaginationInfo(total, page, size), nil
}

// GetByID retrieves one race
func (s *raceService) GetByID(ctx context.Context, id int64) (*models.Race, error) {
	if id <= 0 {
		return nil, apperrors.ErrInvalidRaceID
	}
	return s.raceRepo.GetByID(ctx, nil, id)
}

// Create adds a race after a NULL-safe duplicate check on name, date and
// sport taxonomy
func (s *raceService) Create(ctx context.Context, req dto.CreateRaceRequest, createdBy *int64, status models.RaceStatus) (*models.Race, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	duplicate, err := s.raceRepo.ExistsDuplicate(ctx, req.Name, date, req.Sport, req.SportCategory, req.SportSubtype)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, apperrors.ErrDuplicateRace
	}

	race := &models.Race{
		Name:          req.Name,
		Sport:         req.Sport,
		SportCategory: req.SportCategory,
		SportSubtype:  req.SportSubtype,
		City:          req.City,
		Country:       req.Country,
		Continent:     req.Continent,
		Date:          date,
		StartTime:     req.StartTime,
		Distance:      req.Distance,
		Description:   req.Description,
		Participants:  req.Participants,
		Status:        status,
		CreatedBy:     createdBy,
	}

	id, err := s.raceRepo.Create(ctx, race)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("raceID", id).Str("name", race.Name).Str("status", string(status)).Msg("Race created")

	return s.raceRepo.GetByID(ctx, nil, id)
}

// Update overwrites a race's fields
func (s *raceService) Update(ctx context.Context, id int64, req dto.CreateRaceRequest) (*models.Race, error) {
	race, err := s.raceRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	race.Name = req.Name
	race.Sport = req.Sport
	race.SportCategory = req.SportCategory
	race.SportSubtype = req.SportSubtype
	race.City = req.City
	race.Country = req.Country
	race.Continent = req.Continent
	race.Date = date
	race.StartTime = req.StartTime
	race.Distance = req.Distance
	race.Description = req.Description
	race.Participants = req.Participants

	if err := s.raceRepo.Update(ctx, race); err != nil {
		return nil, err
	}

	return race, nil
}

// Delete removes a race
func (s *raceService) Delete(ctx context.Context, id int64) error {
	return s.raceRepo.Delete(ctx, id)
}

// Approve publishes a pending race and announces it to the feed. The
// race_created announcement is reserved for this server-side path.
func (s *raceService) Approve(ctx context.Context, id int64) error {
	race, err := s.raceRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}

	if race.Status == models.RaceStatusApproved {
		return nil
	}

	if err := s.raceRepo.UpdateStatus(ctx, id, models.RaceStatusApproved); err != nil {
		return err
	}

	if race.CreatedBy != nil {
		post := &models.Post{
			UserID: *race.CreatedBy,
			Type:   models.PostTypeRaceCreated,
			RaceID: &race.ID,
		}
		if _, err := s.postRepo.Create(ctx, nil, post); err != nil {
			s.logger.Warn().Err(err).Int64("raceID", id).Msg("Failed to announce approved race")
		}
	}

	return nil
}

// Reject marks a pending race rejected
func (s *raceService) Reject(ctx context.Context, id int64) error {
	return s.raceRepo.UpdateStatus(ctx, id, models.RaceStatusRejected)
}

// ImportCSV bulk-imports races, skipping rows that duplicate an existing
// race by name, date and sport taxonomy
func (s *raceService) ImportCSV(ctx context.Context, r io.Reader) (*dto.CSVImportResult, error) {
	rows, err := csvimport.ParseRaces(r)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	result := &dto.CSVImportResult{
		Total:      len(rows),
		Duplicates: []string{},
	}

	for _, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			// Unparseable dates are imported dateless rather than dropped
			date = nil
		}

		duplicate, err := s.raceRepo.ExistsDuplicate(ctx, row.Name, date, row.Sport, row.SportCategory, row.SportSubtype)
		if err != nil {
			return nil, err
		}
		if duplicate {
			result.Skipped++
			result.Duplicates = append(result.Duplicates, row.Name)
			continue
		}

		race := &models.Race{
			Name:          row.Name,
			Sport:         row.Sport,
			SportCategory: row.SportCategory,
			SportSubtype:  row.SportSubtype,
			City:          row.City,
			Country:       row.Country,
			Continent:     row.Continent,
			Date:          date,
			StartTime:     row.StartTime,
			Distance:      row.Distance,
			Description:   row.Description,
			Participants:  row.Participants,
			Status:        models.RaceStatusApproved,
		}
		if _, err := s.raceRepo.Create(ctx, race); err != nil {
			return nil, err
		}
		result.Imported++
	}

	s.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("CSV race import finished")

	return result, nil
}
