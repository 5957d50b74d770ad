package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/pkg/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by group ID
	clients map[int64]map[*Client]bool

	// Channel for inbound messages from clients
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Mutex for message listeners
	listenersMu sync.RWMutex

	// Message listeners
	messageListeners []chan *Message

	// Optional connection gauge
	collector *metrics.Collector

	logger zerolog.Logger
}

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message; currently only "text"
	Type string `json:"type"`

	// Group this message belongs to
	GroupID int64 `json:"groupId"`

	// User who sent the message
	SenderID int64 `json:"senderId"`

	// Display name of the sender, filled in server-side
	SenderName string `json:"senderName,omitempty"`

	// Message content
	Content string `json:"content"`

	// Timestamp when the message was sent
	Timestamp time.Time `json:"timestamp"`

	// Message ID from the database
	ID int64 `json:"id,omitempty"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger, collector *metrics.Collector) *Hub {
	return &Hub{
		broadcast:        make(chan *Message),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		clients:          make(map[int64]map[*Client]bool),
		messageListeners: []chan *Message{},
		collector:        collector,
		logger:           logger,
	}
}

// Run starts the hub, handling client registrations, broadcasts, etc.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groupID := client.groupID
	if _, ok := h.clients[groupID]; !ok {
		h.clients[groupID] = make(map[*Client]bool)
	}
	h.clients[groupID][client] = true

	if h.collector != nil {
		h.collector.WebsocketOpened()
	}

	h.logger.Info().
		Int64("groupID", groupID).
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groupID := client.groupID
	if _, ok := h.clients[groupID]; ok {
		if _, ok := h.clients[groupID][client]; ok {
			delete(h.clients[groupID], client)
			close(client.send)

			// If no more clients in this group, clean up
			if len(h.clients[groupID]) == 0 {
				delete(h.clients, groupID)
			}

			if h.collector != nil {
				h.collector.WebsocketClosed()
			}

			h.logger.Info().
				Int64("groupID", groupID).
				Int64("userID", client.userID).
				Str("addr", client.conn.RemoteAddr().String()).
				Msg("Client unregistered")
		}
	}
}

// broadcastMessage broadcasts a message to all clients in a specific group
func (h *Hub) broadcastMessage(message *Message) {
	// First, notify message listeners
	h.notifyMessageListeners(message)

	h.mu.RLock()
	defer h.mu.RUnlock()

	groupID := message.GroupID
	clients, ok := h.clients[groupID]
	if !ok {
		h.logger.Debug().
			Int64("groupID", groupID).
			Msg("No clients in group for broadcast")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("groupID", groupID).
			Msg("Failed to marshal message for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
			// Message sent successfully
		default:
			// Client's send buffer is full, they might be slow or disconnected
			h.mu.RUnlock()
			h.unregister <- client
			h.mu.RLock()
		}
	}

	h.logger.Debug().
		Int64("groupID", groupID).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted to group")
}

// notifyMessageListeners sends a message to all registered message listeners
func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		// Non-blocking send to avoid stalling on slow listeners
		select {
		case listener <- message:
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}

// BroadcastToGroup sends a message to all connected clients in a group
func (h *Hub) BroadcastToGroup(message *Message) {
	h.broadcast <- message
}

// GetClientsCount returns the number of connected clients for a group
func (h *Hub) GetClientsCount(groupID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[groupID]; ok {
		return len(clients)
	}
	return 0
}

// AddMessageListener registers a channel to receive all messages
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}
