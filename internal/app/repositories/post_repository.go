package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post. Runs on tx when provided so activity announcements
// commit together with the workflow that caused them.
func (r *PostRepository) Create(ctx context.Context, tx pgx.Tx, post *models.Post) (int64, error) {
	var id int64
	err := queryable(r.db, tx).QueryRow(ctx,
		`INSERT INTO posts (user_id, type, race_id, content, timestamp, liked_by, comments)
		 VALUES ($1, $2, $3, $4, NOW(), '{}', '[]')
		 RETURNING id`,
		post.UserID, post.Type, post.RaceID, post.Content).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// HasCompletionPost checks whether a completion post already exists for the
// user and race pair
func (r *PostRepository) HasCompletionPost(ctx context.Context, tx pgx.Tx, userID, raceID int64) (bool, error) {
	var exists bool
	err := queryable(r.db, tx).QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM posts WHERE user_id = $1 AND race_id = $2 AND type = 'completion')",
		userID, raceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

func scanPostRow(rows pgx.Rows) (*models.Post, error) {
	var post models.Post
	var comments []byte
	var user models.User
	var raceID *int64
	var raceName, raceSport, raceCity, raceCountry *string
	err := rows.Scan(
		&post.ID,
		&post.UserID,
		&post.Type,
		&post.RaceID,
		&post.Content,
		&post.Timestamp,
		&post.LikedBy,
		&comments,
		&user.ID,
		&user.Name,
		&user.Avatar,
		&raceID,
		&raceName,
		&raceSport,
		&raceCity,
		&raceCountry,
	)
	if err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}

	if err := json.Unmarshal(comments, &post.Comments); err != nil {
		return nil, fmt.Errorf("error decoding comments: %w", err)
	}
	post.User = &user
	if raceID != nil {
		post.Race = &models.Race{
			ID:      *raceID,
			Name:    derefString(raceName),
			Sport:   derefString(raceSport),
			City:    derefString(raceCity),
			Country: derefString(raceCountry),
		}
	}

	return &post, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListFeed retrieves posts with author and race context, newest first
func (r *PostRepository) ListFeed(ctx context.Context, offset uint64, limit int) ([]*models.Post, error) {
	sql := `SELECT p.id, p.user_id, p.type, p.race_id, p.content, p.timestamp, p.liked_by, p.comments,
	               u.id, u.name, u.avatar,
	               r.id, r.name, r.sport, r.city, r.country
	        FROM posts p
	        JOIN users u ON u.id = p.user_id
	        LEFT JOIN races r ON r.id = p.race_id
	        ORDER BY p.timestamp DESC
	        OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, sql, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// Count returns the total number of posts
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// GetOwnerID returns the author of a post
func (r *PostRepository) GetOwnerID(ctx context.Context, postID int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRow(ctx, "SELECT user_id FROM posts WHERE id = $1", postID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrPostNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return ownerID, nil
}

// AddLike adds the user to the post's liked_by set and returns the new set
func (r *PostRepository) AddLike(ctx context.Context, postID int64, userKey string) ([]string, error) {
	var likedBy []string
	err := r.db.QueryRow(ctx,
		`UPDATE posts
		 SET liked_by = ARRAY(SELECT DISTINCT unnest(COALESCE(liked_by, '{}') || ARRAY[$1]::TEXT[]))
		 WHERE id = $2
		 RETURNING liked_by`,
		userKey, postID).Scan(&likedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return likedBy, nil
}

// RemoveLike removes the user from the post's liked_by set
func (r *PostRepository) RemoveLike(ctx context.Context, postID int64, userKey string) ([]string, error) {
	var likedBy []string
	err := r.db.QueryRow(ctx,
		`UPDATE posts
		 SET liked_by = array_remove(COALESCE(liked_by, '{}'), $1::TEXT)
		 WHERE id = $2
		 RETURNING liked_by`,
		userKey, postID).Scan(&likedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return likedBy, nil
}

// AppendComment appends a comment to the post's JSONB comment list and
// returns the updated list
func (r *PostRepository) AppendComment(ctx context.Context, postID int64, comment models.PostComment) ([]models.PostComment, error) {
	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("error encoding comment: %w", err)
	}

	var raw []byte
	err = r.db.QueryRow(ctx,
		`UPDATE posts
		 SET comments = COALESCE(comments, '[]') || $1::jsonb
		 WHERE id = $2
		 RETURNING comments`,
		payload, postID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	var comments []models.PostComment
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("error decoding comments: %w", err)
	}
	return comments, nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}
