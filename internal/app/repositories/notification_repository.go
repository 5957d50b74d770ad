package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, type, actor_id, post_id, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		notification.UserID, notification.Type, notification.ActorID, notification.PostID, notification.Message).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// ListByUser retrieves a user's notifications with actor details, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	sql := `SELECT n.id, n.user_id, n.type, n.actor_id, n.post_id, n.message, n.is_read, n.created_at,
	               a.id, a.name, a.avatar
	        FROM notifications n
	        LEFT JOIN users a ON a.id = n.actor_id
	        WHERE n.user_id = $1
	        ORDER BY n.created_at DESC
	        LIMIT $2`

	rows, err := r.db.Query(ctx, sql, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		var actorID *int64
		var actorName, actorAvatar *string
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.ActorID, &n.PostID, &n.Message, &n.IsRead, &n.CreatedAt,
			&actorID, &actorName, &actorAvatar)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if actorID != nil {
			n.Actor = &models.User{
				ID:     *actorID,
				Name:   derefString(actorName),
				Avatar: derefString(actorAvatar),
			}
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE",
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read; scoped to the owner
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) error {
	result, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2",
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the user read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// Delete removes one notification; scoped to the owner
func (r *NotificationRepository) Delete(ctx context.Context, notificationID, userID int64) error {
	result, err := r.db.Exec(ctx,
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2", notificationID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
