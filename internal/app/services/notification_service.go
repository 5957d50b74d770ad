package services

import (
	"context"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/repositories"
)

// NotificationService exposes the caller's notification inbox
type NotificationService interface {
	List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, notificationID, userID int64) error
}

type notificationService struct {
	notificationRepo *repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo *repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, notificationID, userID int64) error {
	return s.notificationRepo.Delete(ctx, notificationID, userID)
}
