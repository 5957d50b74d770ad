package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// GroupMemberRepository handles database operations for group memberships
type GroupMemberRepository struct {
	db *pgxpool.Pool
}

// NewGroupMemberRepository creates a new GroupMemberRepository
func NewGroupMemberRepository(db *pgxpool.Pool) *GroupMemberRepository {
	return &GroupMemberRepository{db: db}
}

// AddMember links a user to a group. A second call for the same pair is a
// no-op and never downgrades an existing role. Reports whether a row was
// inserted.
func (r *GroupMemberRepository) AddMember(ctx context.Context, tx pgx.Tx, groupID, userID int64, role models.GroupRole) (bool, error) {
	result, err := queryable(r.db, tx).Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, role)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// RemoveMember unlinks a user from a group
func (r *GroupMemberRepository) RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID int64) error {
	result, err := queryable(r.db, tx).Exec(ctx,
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2", groupID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotMember
	}
	return nil
}

// IsMember checks if a user belongs to a group
func (r *GroupMemberRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)",
		groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// GetRole returns a user's role in a group, or ErrNotMember
func (r *GroupMemberRepository) GetRole(ctx context.Context, groupID, userID int64) (models.GroupRole, error) {
	var role models.GroupRole
	err := r.db.QueryRow(ctx,
		"SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2",
		groupID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotMember
		}
		return "", fmt.Errorf("error executing query: %w", err)
	}
	return role, nil
}

// ListMembers retrieves a group's members with user details, owners first
func (r *GroupMemberRepository) ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMember, error) {
	sql := `SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, gm.last_active_at,
	               u.id, u.email, u.name, u.location, u.bio, u.favorite_sport, u.avatar
	        FROM group_members gm
	        JOIN users u ON u.id = gm.user_id
	        WHERE gm.group_id = $1
	        ORDER BY CASE gm.role WHEN 'owner' THEN 0 WHEN 'moderator' THEN 1 ELSE 2 END, gm.joined_at ASC`

	rows, err := r.db.Query(ctx, sql, groupID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		var user models.User
		err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.LastActiveAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Location,
			&user.Bio,
			&user.FavoriteSport,
			&user.Avatar,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		member.User = &user
		members = append(members, &member)
	}

	return members, nil
}

// TouchLastActive bumps the member's last activity timestamp
func (r *GroupMemberRepository) TouchLastActive(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE group_members SET last_active_at = NOW() WHERE group_id = $1 AND user_id = $2",
		groupID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
