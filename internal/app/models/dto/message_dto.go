package dto

import (
	"time"

	"github.com/lusapp/backend/internal/app/models"
)

// SendMessageRequest represents a direct or group chat message payload
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ConversationResponse represents one entry of the conversation list
type ConversationResponse struct {
	ConversationID int64        `json:"conversationId"`
	OtherUser      *models.User `json:"otherUser"`
	LastMessage    string       `json:"lastMessage"`
	LastMessageAt  time.Time    `json:"lastMessageAt"`
	UnreadCount    int          `json:"unreadCount"`
}

// UnreadCountResponse carries a single unread-message total
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}
