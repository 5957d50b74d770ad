package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/db"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/filestorage"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// UserService handles profiles, the social graph and avatar uploads
type UserService interface {
	GetPublicProfile(ctx context.Context, targetID, viewerID int64) (*dto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*models.User, error)
	Follow(ctx context.Context, userID, targetID int64) error
	Unfollow(ctx context.Context, userID, targetID int64) error
	UpdateAvatar(ctx context.Context, userID int64, avatarPath string) error
}

type userService struct {
	userRepo         *repositories.UserRepository
	notificationRepo *repositories.NotificationRepository
	txRunner         db.TxRunner
	storage          filestorage.FileStorage
	logger           zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	notificationRepo *repositories.NotificationRepository,
	txRunner db.TxRunner,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) UserService {
	return &userService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		txRunner:         txRunner,
		storage:          storage,
		logger:           logger,
	}
}

// GetPublicProfile returns another user's profile with follow context
func (s *userService) GetPublicProfile(ctx context.Context, targetID, viewerID int64) (*dto.PublicProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, nil, targetID)
	if err != nil {
		return nil, err
	}

	return &dto.PublicProfileResponse{
		User:        user,
		IsFollowing: helpers.ContainsID(user.Followers, viewerID),
	}, nil
}

// UpdateProfile applies the provided profile fields
func (s *userService) UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*models.User, error) {
	return s.userRepo.UpdateProfile(ctx, userID, req.Name, req.Location, req.Bio, req.FavoriteSport)
}

// Follow adds target to the user's following set and the user to the
// target's followers set, atomically, then notifies the target
func (s *userService) Follow(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return apperrors.NewBadRequestError("cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, nil, targetID); err != nil {
		return err
	}

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.userRepo.AddFollowing(ctx, tx, userID, targetID); err != nil {
			return err
		}
		if _, err := s.userRepo.AddFollower(ctx, tx, targetID, userID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	actorName, err := s.userRepo.GetName(ctx, userID)
	if err != nil {
		actorName = "Someone"
	}

	_, err = s.notificationRepo.Create(ctx, &models.Notification{
		UserID:  targetID,
		Type:    models.NotificationTypeFollow,
		ActorID: &userID,
		Message: actorName + " started following you",
	})
	if err != nil {
		// Notification failure doesn't undo the follow
		s.logger.Warn().Err(err).Int64("targetID", targetID).Msg("Failed to create follow notification")
	}

	return nil
}

// Unfollow removes both sides of the follow relation atomically
func (s *userService) Unfollow(ctx context.Context, userID, targetID int64) error {
	if _, err := s.userRepo.GetByID(ctx, nil, targetID); err != nil {
		return err
	}

	return s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.userRepo.RemoveFollowing(ctx, tx, userID, targetID); err != nil {
			return err
		}
		if _, err := s.userRepo.RemoveFollower(ctx, tx, targetID, userID); err != nil {
			return err
		}
		return nil
	})
}

// UpdateAvatar stores the new avatar path and removes the previous file
func (s *userService) UpdateAvatar(ctx context.Context, userID int64, avatarPath string) error {
	previous, err := s.userRepo.UpdateAvatar(ctx, userID, avatarPath)
	if err != nil {
		return err
	}

	if previous != "" && previous != avatarPath {
		if err := s.storage.DeleteFile(previous); err != nil {
			s.logger.Warn().Err(err).Str("path", previous).Msg("Failed to delete previous avatar")
		}
	}

	return nil
}
