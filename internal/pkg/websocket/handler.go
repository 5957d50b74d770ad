package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MembershipChecker verifies that a user belongs to a group before the
// connection is upgraded.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub        *Hub
	membership MembershipChecker
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, membership MembershipChecker, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		membership: membership,
		logger:     logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for real-time group chat
// @Description Upgrades HTTP connection to a WebSocket connection for real-time chat messaging
// @Tags groups, websocket
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Invalid group ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden: user is not a member of the group"
// @Router /groups/{groupId}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	groupIDStr := c.Param("groupId")
	groupID, err := strconv.ParseInt(groupIDStr, 10, 64)
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid group ID",
		})
		return
	}

	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in context",
		})
		return
	}

	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	isMember, err := h.membership.IsMember(c, groupID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("groupID", groupID).
			Int64("userID", userID).
			Msg("Failed to check group membership")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check membership",
		})
		return
	}

	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "User is not a member of this group",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("groupID", groupID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		userID:  userID,
		groupID: groupID,
		logger:  h.logger,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("groupID", groupID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
