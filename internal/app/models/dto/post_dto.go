package dto

import (
	"time"

	"github.com/lusapp/backend/internal/app/models"
)

// CreatePostRequest represents a post creation payload.
// The race_created type is reserved for the backend and rejected here.
type CreatePostRequest struct {
	Type    string `json:"type" binding:"required,oneof=signup completion general"`
	RaceID  *int64 `json:"raceId"`
	Content string `json:"content"`
}

// CommentRequest represents a new comment on a post
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// FeedItem is one entry of the merged activity feed. Exactly one of Post or
// Race is set: races approved in the last 30 days appear as type "new_race".
type FeedItem struct {
	Type      string       `json:"type" example:"signup"`
	Timestamp time.Time    `json:"timestamp"`
	Post      *models.Post `json:"post,omitempty"`
	Race      *models.Race `json:"race,omitempty"`
}
