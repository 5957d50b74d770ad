package dto

import (
	"time"

	"github.com/lusapp/backend/internal/app/models"
)

// CreateGroupRequest represents a group creation payload
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	SportType   string `json:"sportType"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Password    string `json:"password"` // Optional, protects the group when set
	BannerURL   string `json:"bannerUrl"`
}

// JoinGroupRequest carries the optional password for protected groups
type JoinGroupRequest struct {
	Password string `json:"password"`
}

// GroupResponse represents a group with caller-specific context
type GroupResponse struct {
	Group       *models.Group    `json:"group"`
	HasPassword bool             `json:"hasPassword"`
	MyRole      models.GroupRole `json:"myRole,omitempty"`
}

// MyGroupResponse represents one entry of the caller's group list
type MyGroupResponse struct {
	Group       *models.Group        `json:"group"`
	UnreadCount int                  `json:"unreadCount"`
	LastMessage *GroupMessagePreview `json:"lastMessage,omitempty"`
}

// GroupMessagePreview is a trimmed last-message summary
type GroupMessagePreview struct {
	Content    string    `json:"content"`
	SenderName string    `json:"senderName"`
	CreatedAt  time.Time `json:"createdAt"`
}
