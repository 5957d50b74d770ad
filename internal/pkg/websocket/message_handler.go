package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
)

// GroupMessageStore persists chat messages received over the socket.
type GroupMessageStore interface {
	CreateFromSocket(ctx context.Context, message *models.GroupMessage) (int64, error)
	SenderName(ctx context.Context, userID int64) (string, error)
}

// MessageHandler processes WebSocket messages and persists them to the database
type MessageHandler struct {
	store  GroupMessageStore
	hub    *Hub
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(store GroupMessageStore, hub *Hub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// Start begins processing messages from the hub
func (h *MessageHandler) Start() {
	go h.processMessages()
}

// processMessages listens for messages and saves them to the database
func (h *MessageHandler) processMessages() {
	messageChan := make(chan *Message, 64)
	h.hub.AddMessageListener(messageChan)

	for message := range messageChan {
		if message.Type == "text" {
			h.processTextMessage(message)
		}
	}
}

// processTextMessage saves a text message to the database
func (h *MessageHandler) processTextMessage(message *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	groupMessage := &models.GroupMessage{
		GroupID:  message.GroupID,
		SenderID: message.SenderID,
		Content:  message.Content,
	}

	messageID, err := h.store.CreateFromSocket(ctx, groupMessage)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("groupID", message.GroupID).
			Int64("senderID", message.SenderID).
			Msg("Failed to save WebSocket message to database")
		return
	}

	message.ID = messageID

	if name, err := h.store.SenderName(ctx, message.SenderID); err == nil {
		message.SenderName = name
	}

	h.logger.Debug().
		Int64("messageID", messageID).
		Int64("groupID", message.GroupID).
		Msg("WebSocket message saved to database")
}
