package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

const groupColumns = "id, name, sport_type, city, country, description, password_hash, banner_url, race_id, member_count, created_by, created_at, updated_at"

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var group models.Group
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.SportType,
		&group.City,
		&group.Country,
		&group.Description,
		&group.PasswordHash,
		&group.BannerURL,
		&group.RaceID,
		&group.MemberCount,
		&group.CreatedBy,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error scanning group: %w", err)
	}
	return &group, nil
}

// Create inserts a standalone group and returns its ID
func (r *GroupRepository) Create(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, error) {
	query := squirrel.Insert("groups").
		Columns("name", "sport_type", "city", "country", "description", "password_hash", "banner_url", "race_id", "created_by").
		Values(group.Name, group.SportType, group.City, group.Country, group.Description, group.PasswordHash, group.BannerURL, group.RaceID, group.CreatedBy).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = queryable(r.db, tx).QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// CreateForRace inserts the participant group for a race. The partial unique
// index on race_id makes the insert a no-op when the group already exists; in
// that case the returned ID is 0 and created is false.
func (r *GroupRepository) CreateForRace(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, bool, error) {
	var id int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`INSERT INTO groups (name, sport_type, city, country, description, race_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (race_id) WHERE race_id IS NOT NULL DO NOTHING
		 RETURNING id`,
		group.Name, group.SportType, group.City, group.Country, group.Description, group.RaceID, group.CreatedBy).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("error executing query: %w", err)
	}
	return id, true, nil
}

// GetIDByRaceID returns the participant group ID for a race
func (r *GroupRepository) GetIDByRaceID(ctx context.Context, tx pgx.Tx, raceID int64) (int64, error) {
	var id int64
	err := queryable(r.db, tx).QueryRow(ctx, "SELECT id FROM groups WHERE race_id = $1", raceID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrGroupNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	sql := fmt.Sprintf("SELECT %s FROM groups WHERE id = $1", groupColumns)
	return scanGroup(r.db.QueryRow(ctx, sql, id))
}

// GetByRaceID retrieves the participant group for a race
func (r *GroupRepository) GetByRaceID(ctx context.Context, raceID int64) (*models.Group, error) {
	sql := fmt.Sprintf("SELECT %s FROM groups WHERE race_id = $1", groupColumns)
	return scanGroup(r.db.QueryRow(ctx, sql, raceID))
}

// Search finds groups by name, sport type and city, most popular first
func (r *GroupRepository) Search(ctx context.Context, search, sportType, city string, limit int) ([]*models.Group, error) {
	query := squirrel.Select(groupColumns).
		From("groups").
		OrderBy("member_count DESC, id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", "%"+search+"%", "%"+search+"%")
	}
	if sportType != "" {
		query = query.Where("sport_type = ?", sportType)
	}
	if city != "" {
		query = query.Where("city ILIKE ?", city)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// ListByUserID retrieves the groups a user belongs to
func (r *GroupRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Group, error) {
	sql := `SELECT g.id, g.name, g.sport_type, g.city, g.country, g.description, g.password_hash, g.banner_url,
	               g.race_id, g.member_count, g.created_by, g.created_at, g.updated_at
	        FROM groups g
	        JOIN group_members gm ON gm.group_id = g.id
	        WHERE gm.user_id = $1
	        ORDER BY g.updated_at DESC`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// RecomputeMemberCount recalculates member_count from live membership rows
// and returns the new value.
func (r *GroupRepository) RecomputeMemberCount(ctx context.Context, tx pgx.Tx, groupID int64) (int, error) {
	var count int
	err := queryable(r.db, tx).QueryRow(ctx,
		`UPDATE groups
		 SET member_count = (SELECT COUNT(*) FROM group_members WHERE group_id = $1),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING member_count`,
		groupID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrGroupNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// Delete removes a group and cascades to members, messages and gear lists
func (r *GroupRepository) Delete(ctx context.Context, groupID int64) error {
	result, err := r.db.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}
	return nil
}
