package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
)

// GroupMessageRepository handles database operations for group chat
type GroupMessageRepository struct {
	db *pgxpool.Pool
}

// NewGroupMessageRepository creates a new GroupMessageRepository
func NewGroupMessageRepository(db *pgxpool.Pool) *GroupMessageRepository {
	return &GroupMessageRepository{db: db}
}

// Create inserts a group message and returns the stored row
func (r *GroupMessageRepository) Create(ctx context.Context, message *models.GroupMessage) (*models.GroupMessage, error) {
	var stored models.GroupMessage
	err := r.db.QueryRow(ctx,
		`INSERT INTO group_messages (group_id, sender_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, group_id, sender_id, content, created_at`,
		message.GroupID, message.SenderID, message.Content).
		Scan(&stored.ID, &stored.GroupID, &stored.SenderID, &stored.Content, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &stored, nil
}

// CreateFromSocket persists a message received over the websocket.
// Implements the socket message store.
func (r *GroupMessageRepository) CreateFromSocket(ctx context.Context, message *models.GroupMessage) (int64, error) {
	stored, err := r.Create(ctx, message)
	if err != nil {
		return 0, err
	}
	return stored.ID, nil
}

// SenderName returns the display name for a sender ID
func (r *GroupMessageRepository) SenderName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, "SELECT name FROM users WHERE id = $1", userID).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("error executing query: %w", err)
	}
	return name, nil
}

// ListByGroup retrieves a group's messages with sender details, oldest first
func (r *GroupMessageRepository) ListByGroup(ctx context.Context, groupID int64, limit int) ([]*models.GroupMessage, error) {
	sql := `SELECT gm.id, gm.group_id, gm.sender_id, gm.content, gm.created_at,
	               u.id, u.name, u.avatar
	        FROM group_messages gm
	        JOIN users u ON u.id = gm.sender_id
	        WHERE gm.group_id = $1
	        ORDER BY gm.created_at ASC
	        LIMIT $2`

	rows, err := r.db.Query(ctx, sql, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.GroupMessage
	for rows.Next() {
		var msg models.GroupMessage
		var sender models.User
		err := rows.Scan(&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Content, &msg.CreatedAt,
			&sender.ID, &sender.Name, &sender.Avatar)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		msg.Sender = &sender
		messages = append(messages, &msg)
	}

	return messages, nil
}

// MarkAllRead records read receipts for every message in the group the user
// has not read yet. Re-reading is a no-op.
func (r *GroupMessageRepository) MarkAllRead(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO group_message_reads (message_id, user_id)
		 SELECT id, $2 FROM group_messages WHERE group_id = $1 AND sender_id <> $2
		 ON CONFLICT (message_id, user_id) DO NOTHING`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages in one group
func (r *GroupMessageRepository) UnreadCount(ctx context.Context, groupID, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM group_messages gm
		 WHERE gm.group_id = $1 AND gm.sender_id <> $2
		   AND NOT EXISTS (SELECT 1 FROM group_message_reads r WHERE r.message_id = gm.id AND r.user_id = $2)`,
		groupID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// TotalUnread returns the number of unread group messages across all of the
// user's groups
func (r *GroupMessageRepository) TotalUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM group_messages gm
		 JOIN group_members m ON m.group_id = gm.group_id AND m.user_id = $1
		 WHERE gm.sender_id <> $1
		   AND NOT EXISTS (SELECT 1 FROM group_message_reads r WHERE r.message_id = gm.id AND r.user_id = $1)`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// LastMessage returns a preview of the newest message in a group, or nil
// when the group has no messages
func (r *GroupMessageRepository) LastMessage(ctx context.Context, groupID int64) (*dto.GroupMessagePreview, error) {
	sql := `SELECT gm.content, u.name, gm.created_at
	        FROM group_messages gm
	        JOIN users u ON u.id = gm.sender_id
	        WHERE gm.group_id = $1
	        ORDER BY gm.created_at DESC
	        LIMIT 1`

	var preview dto.GroupMessagePreview
	err := r.db.QueryRow(ctx, sql, groupID).Scan(&preview.Content, &preview.SenderName, &preview.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &preview, nil
}
