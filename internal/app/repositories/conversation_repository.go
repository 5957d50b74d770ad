package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// ConversationRepository handles database operations for direct messages
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// orderPair returns the two user IDs in ascending order
func orderPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// FindOrCreate returns the conversation for a user pair, creating it when
// missing. The pair is stored ordered so both directions hit the same row.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	user1, user2 := orderPair(userA, userB)

	var conv models.Conversation
	err := r.db.QueryRow(ctx,
		`INSERT INTO conversations (user1_id, user2_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_id = EXCLUDED.user1_id
		 RETURNING id, user1_id, user2_id, last_message_at`,
		user1, user2).Scan(&conv.ID, &conv.User1ID, &conv.User2ID, &conv.LastMessageAt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &conv, nil
}

// ListForUser retrieves the user's conversations with the other participant,
// the latest message and the unread count, most recent first
func (r *ConversationRepository) ListForUser(ctx context.Context, userID int64) ([]*dto.ConversationResponse, error) {
	sql := `SELECT c.id, c.last_message_at,
	               u.id, u.email, u.name, u.location, u.bio, u.favorite_sport, u.avatar,
	               COALESCE((SELECT m.content FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1), ''),
	               (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id <> $1 AND m.read = FALSE)
	        FROM conversations c
	        JOIN users u ON u.id = CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END
	        WHERE c.user1_id = $1 OR c.user2_id = $1
	        ORDER BY c.last_message_at DESC`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var conversations []*dto.ConversationResponse
	for rows.Next() {
		var item dto.ConversationResponse
		var other models.User
		err := rows.Scan(
			&item.ConversationID,
			&item.LastMessageAt,
			&other.ID,
			&other.Email,
			&other.Name,
			&other.Location,
			&other.Bio,
			&other.FavoriteSport,
			&other.Avatar,
			&item.LastMessage,
			&item.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		item.OtherUser = &other
		conversations = append(conversations, &item)
	}

	return conversations, nil
}

// ListMessages retrieves a conversation's messages in chronological order
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	sql := `SELECT id, conversation_id, sender_id, content, read, created_at
	        FROM messages
	        WHERE conversation_id = $1
	        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, sql, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Read, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, nil
}

// MarkRead marks every message from the other participant as read
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, readerID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE messages SET read = TRUE WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE",
		conversationID, readerID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// CreateMessage inserts a direct message and bumps the conversation's
// last_message_at
func (r *ConversationRepository) CreateMessage(ctx context.Context, conversationID, senderID int64, content string) (*models.Message, error) {
	var msg models.Message
	err := r.db.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, conversation_id, sender_id, content, read, created_at`,
		conversationID, senderID, content).Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Read, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	_, err = r.db.Exec(ctx,
		"UPDATE conversations SET last_message_at = $1 WHERE id = $2",
		msg.CreatedAt, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &msg, nil
}

// GetByID retrieves a conversation
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.QueryRow(ctx,
		"SELECT id, user1_id, user2_id, last_message_at FROM conversations WHERE id = $1",
		id).Scan(&conv.ID, &conv.User1ID, &conv.User2ID, &conv.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &conv, nil
}
