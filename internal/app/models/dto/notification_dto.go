package dto

import "github.com/lusapp/backend/internal/app/models"

// NotificationListResponse bundles notifications with the unread total
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}
