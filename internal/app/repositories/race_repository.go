package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

const raceColumns = "id, name, sport, sport_category, sport_subtype, city, country, continent, date, start_time, distance, description, participants, registered_user_ids, status, created_by, created_at"

// RaceRepository handles database operations for races
type RaceRepository struct {
	db *pgxpool.Pool
}

// NewRaceRepository creates a new RaceRepository
func NewRaceRepository(db *pgxpool.Pool) *RaceRepository {
	return &RaceRepository{db: db}
}

func scanRace(row pgx.Row) (*models.Race, error) {
	var race models.Race
	err := row.Scan(
		&race.ID,
		&race.Name,
		&race.Sport,
		&race.SportCategory,
		&race.SportSubtype,
		&race.City,
		&race.Country,
		&race.Continent,
		&race.Date,
		&race.StartTime,
		&race.Distance,
		&race.Description,
		&race.Participants,
		&race.RegisteredUserIDs,
		&race.Status,
		&race.CreatedBy,
		&race.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRaceNotFound
		}
		return nil, fmt.Errorf("error scanning race: %w", err)
	}
	return &race, nil
}

// GetByID retrieves a race by ID. Runs on tx when provided.
func (r *RaceRepository) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.Race, error) {
	sql := fmt.Sprintf("SELECT %s FROM races WHERE id = $1", raceColumns)
	return scanRace(queryable(r.db, tx).QueryRow(ctx, sql, id))
}

// buildFilter applies the listing filters to a select builder
func buildFilter(query squirrel.SelectBuilder, filter dto.RaceFilter) squirrel.SelectBuilder {
	if filter.SportCategory != "" {
		query = query.Where("sport_category = ?", filter.SportCategory)
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}
	if filter.Country != "" {
		query = query.Where("country ILIKE ?", filter.Country)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}
	if filter.Search != "" {
		query = query.Where("(name ILIKE ? OR city ILIKE ? OR country ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

// List retrieves races matching the filter, ordered by date
func (r *RaceRepository) List(ctx context.Context, filter dto.RaceFilter, offset uint64, limit int) ([]*models.Race, error) {
	query := buildFilter(squirrel.Select(raceColumns).From("races"), filter).
		OrderBy("date ASC NULLS LAST, id ASC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, err
		}
		races = append(races, race)
	}

	return races, nil
}

// Count returns the number of races matching the filter
func (r *RaceRepository) Count(ctx context.Context, filter dto.RaceFilter) (int64, error) {
	query := buildFilter(squirrel.Select("COUNT(*)").From("races"), filter).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return count, nil
}

// ListApprovedSince returns races approved and created after the cutoff,
// newest first. Used by the activity feed.
func (r *RaceRepository) ListApprovedSince(ctx context.Context, since time.Time, limit int) ([]*models.Race, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM races WHERE status = 'approved' AND created_at >= $1 ORDER BY created_at DESC LIMIT $2",
		raceColumns)

	rows, err := r.db.Query(ctx, sql, since, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, err
		}
		races = append(races, race)
	}

	return races, nil
}

// Create inserts a new race and returns its ID
func (r *RaceRepository) Create(ctx context.Context, race *models.Race) (int64, error) {
	query := squirrel.Insert("races").
		Columns("name", "sport", "sport_category", "sport_subtype", "city", "country", "continent",
			"date", "start_time", "distance", "description", "participants", "status", "created_by").
		Values(race.Name, race.Sport, race.SportCategory, race.SportSubtype, race.City, race.Country, race.Continent,
			race.Date, race.StartTime, race.Distance, race.Description, race.Participants, race.Status, race.CreatedBy).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// Update overwrites a race's editable fields
func (r *RaceRepository) Update(ctx context.Context, race *models.Race) error {
	query := squirrel.Update("races").
		Set("name", race.Name).
		Set("sport", race.Sport).
		Set("sport_category", race.SportCategory).
		Set("sport_subtype", race.SportSubtype).
		Set("city", race.City).
		Set("country", race.Country).
		Set("continent", race.Continent).
		Set("date", race.Date).
		Set("start_time", race.StartTime).
		Set("distance", race.Distance).
		Set("description", race.Description).
		Set("participants", race.Participants).
		Where("id = ?", race.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrRaceNotFound
	}

	return nil
}

// UpdateStatus changes a race's moderation status
func (r *RaceRepository) UpdateStatus(ctx context.Context, id int64, status models.RaceStatus) error {
	result, err := r.db.Exec(ctx, "UPDATE races SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrRaceNotFound
	}
	return nil
}

// Delete removes a race
func (r *RaceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, "DELETE FROM races WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrRaceNotFound
	}
	return nil
}

// ExistsDuplicate checks for an existing race with the same name, date and
// sport taxonomy. NULL-safe so two NULL dates still match each other.
func (r *RaceRepository) ExistsDuplicate(ctx context.Context, name string, date *time.Time, sport, category, subtype string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM races
		   WHERE LOWER(name) = LOWER($1)
		     AND date IS NOT DISTINCT FROM $2
		     AND sport IS NOT DISTINCT FROM $3
		     AND sport_category IS NOT DISTINCT FROM $4
		     AND sport_subtype IS NOT DISTINCT FROM $5
		 )`,
		name, date, sport, category, subtype).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// AddRegisteredUser adds userID to the race's registered set and returns the new set
func (r *RaceRepository) AddRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error) {
	var registered []int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`UPDATE races
		 SET registered_user_ids = ARRAY(SELECT DISTINCT unnest(COALESCE(registered_user_ids, '{}') || ARRAY[$1]::BIGINT[]))
		 WHERE id = $2
		 RETURNING registered_user_ids`,
		userID, raceID).Scan(&registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRaceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return registered, nil
}

// RemoveRegisteredUser removes userID from the race's registered set
func (r *RaceRepository) RemoveRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error) {
	var registered []int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`UPDATE races
		 SET registered_user_ids = array_remove(COALESCE(registered_user_ids, '{}'), $1::BIGINT)
		 WHERE id = $2
		 RETURNING registered_user_ids`,
		userID, raceID).Scan(&registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRaceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return registered, nil
}
