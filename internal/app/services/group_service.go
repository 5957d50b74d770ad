package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/db"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/auth"
)

// groupStore is the slice of the group repository this service needs
type groupStore interface {
	Create(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetByRaceID(ctx context.Context, raceID int64) (*models.Group, error)
	Search(ctx context.Context, search, sportType, city string, limit int) ([]*models.Group, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Group, error)
	RecomputeMemberCount(ctx context.Context, tx pgx.Tx, groupID int64) (int, error)
	Delete(ctx context.Context, groupID int64) error
}

type groupMemberStore interface {
	AddMember(ctx context.Context, tx pgx.Tx, groupID, userID int64, role models.GroupRole) (bool, error)
	RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	GetRole(ctx context.Context, groupID, userID int64) (models.GroupRole, error)
	ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMember, error)
}

type groupChatStore interface {
	UnreadCount(ctx context.Context, groupID, userID int64) (int, error)
	TotalUnread(ctx context.Context, userID int64) (int, error)
	LastMessage(ctx context.Context, groupID int64) (*dto.GroupMessagePreview, error)
}

// GroupService handles user-created and race-provisioned groups
type GroupService interface {
	Create(ctx context.Context, req dto.CreateGroupRequest, creatorID int64) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, groupID, viewerID int64) (*dto.GroupResponse, error)
	GetByRaceID(ctx context.Context, raceID, viewerID int64) (*dto.GroupResponse, error)
	Search(ctx context.Context, search, sportType, city string, viewerID int64) ([]*dto.GroupResponse, error)
	MyGroups(ctx context.Context, userID int64) ([]*dto.MyGroupResponse, error)
	TotalUnread(ctx context.Context, userID int64) (int, error)
	Join(ctx context.Context, groupID, userID int64, password string) (*dto.GroupResponse, error)
	Leave(ctx context.Context, groupID, userID int64) error
	Members(ctx context.Context, groupID, viewerID int64) ([]*models.GroupMember, error)
	Delete(ctx context.Context, groupID, userID int64) error
}

type groupService struct {
	groupRepo   groupStore
	memberRepo  groupMemberStore
	messageRepo groupChatStore
	txRunner    db.TxRunner
	logger      zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groupRepo groupStore,
	memberRepo groupMemberStore,
	messageRepo groupChatStore,
	txRunner db.TxRunner,
	logger zerolog.Logger,
) GroupService {
	return &groupService{
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		messageRepo: messageRepo,
		txRunner:    txRunner,
		logger:      logger,
	}
}

// toResponse strips the password hash and attaches caller context
func (s *groupService) toResponse(ctx context.Context, group *models.Group, viewerID int64) *dto.GroupResponse {
	response := &dto.GroupResponse{
		Group:       group,
		HasPassword: group.PasswordHash != nil,
	}
	group.PasswordHash = nil

	if viewerID > 0 {
		if role, err := s.memberRepo.GetRole(ctx, group.ID, viewerID); err == nil {
			response.MyRole = role
		}
	}

	return response
}

// Create makes a standalone group with the creator as owner
func (s *groupService) Create(ctx context.Context, req dto.CreateGroupRequest, creatorID int64) (*dto.GroupResponse, error) {
	group := &models.Group{
		Name:        req.Name,
		SportType:   req.SportType,
		City:        req.City,
		Country:     req.Country,
		Description: req.Description,
		BannerURL:   req.BannerURL,
		CreatedBy:   &creatorID,
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		group.PasswordHash = &hash
	}

	var groupID int64
	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.groupRepo.Create(ctx, tx, group)
		if err != nil {
			return err
		}
		groupID = id

		if _, err := s.memberRepo.AddMember(ctx, tx, groupID, creatorID, models.GroupRoleOwner); err != nil {
			return err
		}
		if _, err := s.groupRepo.RecomputeMemberCount(ctx, tx, groupID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("groupID", groupID).Int64("creatorID", creatorID).Msg("Group created")

	return s.toResponse(ctx, created, creatorID), nil
}

// GetByID retrieves a group with caller context
func (s *groupService) GetByID(ctx context.Context, groupID, viewerID int64) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, group, viewerID), nil
}

// GetByRaceID retrieves the participant group for a race
func (s *groupService) GetByRaceID(ctx context.Context, raceID, viewerID int64) (*dto.GroupResponse, error) {
	if raceID <= 0 {
		return nil, apperrors.ErrInvalidRaceID
	}

	group, err := s.groupRepo.GetByRaceID(ctx, raceID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, group, viewerID), nil
}

// Search finds groups by name, sport type and city
func (s *groupService) Search(ctx context.Context, search, sportType, city string, viewerID int64) ([]*dto.GroupResponse, error) {
	groups, err := s.groupRepo.Search(ctx, search, sportType, city, 50)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, s.toResponse(ctx, group, viewerID))
	}

	return responses, nil
}

// MyGroups lists the caller's groups with unread counts and last messages
func (s *groupService) MyGroups(ctx context.Context, userID int64) ([]*dto.MyGroupResponse, error) {
	groups, err := s.groupRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.MyGroupResponse, 0, len(groups))
	for _, group := range groups {
		group.PasswordHash = nil

		unread, err := s.messageRepo.UnreadCount(ctx, group.ID, userID)
		if err != nil {
			return nil, err
		}

		last, err := s.messageRepo.LastMessage(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		responses = append(responses, &dto.MyGroupResponse{
			Group:       group,
			UnreadCount: unread,
			LastMessage: last,
		})
	}

	return responses, nil
}

// TotalUnread returns the unread group-message total across the caller's groups
func (s *groupService) TotalUnread(ctx context.Context, userID int64) (int, error) {
	return s.messageRepo.TotalUnread(ctx, userID)
}

// Join adds the caller to a group, checking the password when protected
func (s *groupService) Join(ctx context.Context, groupID, userID int64, password string) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperrors.ErrAlreadyMember
	}

	if group.PasswordHash != nil {
		if password == "" {
			return nil, apperrors.ErrGroupPasswordNeeded
		}
		if !auth.CheckPassword(*group.PasswordHash, password) {
			return nil, apperrors.ErrGroupWrongPassword
		}
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.memberRepo.AddMember(ctx, tx, groupID, userID, models.GroupRoleMember); err != nil {
			return err
		}
		if _, err := s.groupRepo.RecomputeMemberCount(ctx, tx, groupID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, groupID, userID)
}

// Leave removes the caller from a group. The owner cannot leave; they must
// delete the group or transfer ownership first.
func (s *groupService) Leave(ctx context.Context, groupID, userID int64) error {
	role, err := s.memberRepo.GetRole(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role == models.GroupRoleOwner {
		return apperrors.ErrOwnerCannotLeave
	}

	return s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.memberRepo.RemoveMember(ctx, tx, groupID, userID); err != nil {
			return err
		}
		if _, err := s.groupRepo.RecomputeMemberCount(ctx, tx, groupID); err != nil {
			return err
		}
		return nil
	})
}

// Members lists a group's members; only members can see the roster
func (s *groupService) Members(ctx context.Context, groupID, viewerID int64) ([]*models.GroupMember, error) {
	member, err := s.memberRepo.IsMember(ctx, groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotMember
	}

	return s.memberRepo.ListMembers(ctx, groupID)
}

// Delete removes a group entirely; owner only
func (s *groupService) Delete(ctx context.Context, groupID, userID int64) error {
	role, err := s.memberRepo.GetRole(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role != models.GroupRoleOwner {
		return apperrors.ErrPermissionDenied
	}

	return s.groupRepo.Delete(ctx, groupID)
}
