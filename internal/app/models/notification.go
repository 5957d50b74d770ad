package models

import (
	"time"
)

// Notification defines the notification model based on the 'notifications' table
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type" example:"comment"`
	ActorID   *int64    `json:"actorId,omitempty" db:"actor_id"`
	PostID    *int64    `json:"postId,omitempty" db:"post_id"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Actor     *User     `json:"actor,omitempty"` // Relation, no db tag
}
