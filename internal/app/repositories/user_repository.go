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

// userColumns is the scan order used by scanUser
const userColumns = "id, firebase_uid, email, password_hash, name, location, bio, favorite_sport, avatar, total_races, joined_races, completed_races, following, followers, created_at, updated_at"

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirebaseUID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Location,
		&user.Bio,
		&user.FavoriteSport,
		&user.Avatar,
		&user.TotalRaces,
		&user.JoinedRaces,
		&user.CompletedRaces,
		&user.Following,
		&user.Followers,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user and returns its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	query := squirrel.Insert("users").
		Columns("firebase_uid", "email", "password_hash", "name", "location", "bio", "favorite_sport", "avatar").
		Values(user.FirebaseUID, user.Email, user.PasswordHash, user.Name, user.Location, user.Bio, user.FavoriteSport, user.Avatar).
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

// GetByID retrieves a user by ID. Runs on tx when provided.
func (r *UserRepository) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(queryable(r.db, tx).QueryRow(ctx, sql, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(email) = LOWER($1)", userColumns)
	return scanUser(r.db.QueryRow(ctx, sql, email))
}

// GetByFirebaseUID retrieves a user by its external identity subject
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE firebase_uid = $1", userColumns)
	return scanUser(r.db.QueryRow(ctx, sql, uid))
}

// EmailExists checks whether an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// LinkFirebaseUID attaches an external identity subject to an existing account
func (r *UserRepository) LinkFirebaseUID(ctx context.Context, userID int64, uid string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET firebase_uid = $1, updated_at = NOW() WHERE id = $2", uid, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// UpdateProfile applies the non-nil profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, name, location, bio, favoriteSport *string) (*models.User, error) {
	update := squirrel.Update("users").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", userID).
		Suffix("RETURNING " + userColumns).
		PlaceholderFormat(squirrel.Dollar)

	if name != nil {
		update = update.Set("name", *name)
	}
	if location != nil {
		update = update.Set("location", *location)
	}
	if bio != nil {
		update = update.Set("bio", *bio)
	}
	if favoriteSport != nil {
		update = update.Set("favorite_sport", *favoriteSport)
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// UpdateAvatar sets the user's avatar path and returns the previous one
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, avatar string) (string, error) {
	var previous string
	err := r.db.QueryRow(ctx,
		`UPDATE users u SET avatar = $1, updated_at = NOW()
		 FROM (SELECT avatar FROM users WHERE id = $2) old
		 WHERE u.id = $2
		 RETURNING old.avatar`,
		avatar, userID).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error executing query: %w", err)
	}
	return previous, nil
}

// AddJoinedRace adds raceID to the user's joined set and returns the new set.
// The distinct-union keeps the column duplicate-free no matter how often it runs.
func (r *UserRepository) AddJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error) {
	var joined []int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`UPDATE users
		 SET joined_races = ARRAY(SELECT DISTINCT unnest(COALESCE(joined_races, '{}') || ARRAY[$1]::BIGINT[])),
		     updated_at = NOW()
		 WHERE id = $2
		 RETURNING joined_races`,
		raceID, userID).Scan(&joined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return joined, nil
}

// RemoveJoinedRace removes raceID from the user's joined set and returns the new set
func (r *UserRepository) RemoveJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error) {
	var joined []int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`UPDATE users
		 SET joined_races = array_remove(COALESCE(joined_races, '{}'), $1::BIGINT),
		     updated_at = NOW()
		 WHERE id = $2
		 RETURNING joined_races`,
		raceID, userID).Scan(&joined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return joined, nil
}

// AddCompletedRace adds raceID to the completed set. It reports whether the
// race was newly added so the caller can bump total_races exactly once.
func (r *UserRepository) AddCompletedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) (completed []int64, added bool, err error) {
	q := queryable(r.db, tx)

	var already bool
	err = q.QueryRow(ctx,
		"SELECT COALESCE(completed_races, '{}') @> ARRAY[$1]::BIGINT[] FROM users WHERE id = $2",
		raceID, userID).Scan(&already)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("error executing query: %w", err)
	}

	err = q.QueryRow(ctx,
		`UPDATE users
		 SET completed_races = ARRAY(SELECT DISTINCT unnest(COALESCE(completed_races, '{}') || ARRAY[$1]::BIGINT[])),
		     total_races = total_races + CASE WHEN $3 THEN 0 ELSE 1 END,
		     updated_at = NOW()
		 WHERE id = $2
		 RETURNING completed_races`,
		raceID, userID, already).Scan(&completed)
	if err != nil {
		return nil, false, fmt.Errorf("error executing query: %w", err)
	}

	return completed, !already, nil
}

// AddFollowing adds targetID to userID's following set
func (r *UserRepository) AddFollowing(ctx context.Context, tx pgx.Tx, userID, targetID int64) ([]int64, error) {
	return r.updateIDSet(ctx, tx, "following", "||", userID, targetID)
}

// RemoveFollowing removes targetID from userID's following set
func (r *UserRepository) RemoveFollowing(ctx context.Context, tx pgx.Tx, userID, targetID int64) ([]int64, error) {
	return r.updateIDSet(ctx, tx, "following", "remove", userID, targetID)
}

// AddFollower adds actorID to userID's followers set
func (r *UserRepository) AddFollower(ctx context.Context, tx pgx.Tx, userID, actorID int64) ([]int64, error) {
	return r.updateIDSet(ctx, tx, "followers", "||", userID, actorID)
}

// RemoveFollower removes actorID from userID's followers set
func (r *UserRepository) RemoveFollower(ctx context.Context, tx pgx.Tx, userID, actorID int64) ([]int64, error) {
	return r.updateIDSet(ctx, tx, "followers", "remove", userID, actorID)
}

// updateIDSet applies a distinct-union or removal on one of the users table's
// BIGINT[] set columns. column is never caller-supplied.
func (r *UserRepository) updateIDSet(ctx context.Context, tx pgx.Tx, column, op string, userID, value int64) ([]int64, error) {
	var sql string
	if op == "remove" {
		sql = fmt.Sprintf(
			`UPDATE users SET %s = array_remove(COALESCE(%s, '{}'), $1::BIGINT), updated_at = NOW() WHERE id = $2 RETURNING %s`,
			column, column, column)
	} else {
		sql = fmt.Sprintf(
			`UPDATE users SET %s = ARRAY(SELECT DISTINCT unnest(COALESCE(%s, '{}') || ARRAY[$1]::BIGINT[])), updated_at = NOW() WHERE id = $2 RETURNING %s`,
			column, column, column)
	}

	var set []int64
	err := queryable(r.db, tx).QueryRow(ctx, sql, value, userID).Scan(&set)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return set, nil
}

// GetName returns a user's display name
func (r *UserRepository) GetName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, "SELECT name FROM users WHERE id = $1", userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error executing query: %w", err)
	}
	return name, nil
}
