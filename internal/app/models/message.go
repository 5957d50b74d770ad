package models

import (
	"time"
)

// Conversation defines a direct-message thread between two users.
// The pair is stored ordered (User1ID < User2ID) so each pair maps to
// exactly one row.
type Conversation struct {
	ID            int64     `json:"id" db:"id"`
	User1ID       int64     `json:"user1Id" db:"user1_id"`
	User2ID       int64     `json:"user2Id" db:"user2_id"`
	LastMessageAt time.Time `json:"lastMessageAt" db:"last_message_at"`
}

// Message defines a direct message based on the 'messages' table
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	Read           bool      `json:"read" db:"read"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// GroupMessage defines a group chat message based on the 'group_messages' table
type GroupMessage struct {
	ID        int64     `json:"id" db:"id"`
	GroupID   int64     `json:"groupId" db:"group_id"`
	SenderID  int64     `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Sender    *User     `json:"sender,omitempty"` // Relation, no db tag
}
