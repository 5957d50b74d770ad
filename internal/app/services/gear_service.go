package services

import (
	"context"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// GearService handles shared gear checklists inside groups. Every operation
// is gated on group membership.
type GearService interface {
	CreateList(ctx context.Context, groupID, userID int64, req dto.CreateGearListRequest) (*models.GearList, error)
	Lists(ctx context.Context, groupID, userID int64) ([]*models.GearList, error)
	AddItem(ctx context.Context, listID, userID int64, req dto.CreateGearItemRequest) (*models.GearItem, error)
	UpdateItemStatus(ctx context.Context, itemID, userID int64, status models.GearItemStatus) (*models.GearItem, error)
	DeleteItem(ctx context.Context, itemID, userID int64) error
}

type gearService struct {
	gearRepo   *repositories.GearRepository
	memberRepo *repositories.GroupMemberRepository
}

// NewGearService creates a new GearService
func NewGearService(gearRepo *repositories.GearRepository, memberRepo *repositories.GroupMemberRepository) GearService {
	return &gearService{
		gearRepo:   gearRepo,
		memberRepo: memberRepo,
	}
}

func (s *gearService) requireMember(ctx context.Context, groupID, userID int64) error {
	member, err := s.memberRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.ErrNotMember
	}
	return nil
}

// CreateList adds a gear list to a group
func (s *gearService) CreateList(ctx context.Context, groupID, userID int64, req dto.CreateGearListRequest) (*models.GearList, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	list := &models.GearList{
		GroupID:   groupID,
		RaceID:    req.RaceID,
		Title:     req.Title,
		CreatedBy: &userID,
	}

	listID, err := s.gearRepo.CreateList(ctx, list)
	if err != nil {
		return nil, err
	}

	return s.gearRepo.GetList(ctx, listID)
}

// Lists returns a group's gear lists with their items
func (s *gearService) Lists(ctx context.Context, groupID, userID int64) ([]*models.GearList, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	lists, err := s.gearRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		items, err := s.gearRepo.ListItems(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			list.Items = append(list.Items, *item)
		}
	}

	return lists, nil
}

// AddItem appends a needed item to a gear list
func (s *gearService) AddItem(ctx context.Context, listID, userID int64, req dto.CreateGearItemRequest) (*models.GearItem, error) {
	list, err := s.gearRepo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, list.GroupID, userID); err != nil {
		return nil, err
	}

	item := &models.GearItem{
		ListID:      listID,
		Description: req.Description,
		AddedBy:     &userID,
		Status:      models.GearItemStatusNeeded,
	}

	itemID, err := s.gearRepo.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}

	return s.gearRepo.GetItem(ctx, itemID)
}

// UpdateItemStatus moves an item between needed, claimed and completed.
// Claiming records the caller; releasing back to needed clears the claim.
// Only the claimer may move a claimed item on, unless the caller moderates
// the group.
func (s *gearService) UpdateItemStatus(ctx context.Context, itemID, userID int64, status models.GearItemStatus) (*models.GearItem, error) {
	item, err := s.gearRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	list, err := s.gearRepo.GetList(ctx, item.ListID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, list.GroupID, userID); err != nil {
		return nil, err
	}

	var claimedBy *int64
	switch status {
	case models.GearItemStatusNeeded:
		claimedBy = nil
	case models.GearItemStatusClaimed:
		claimedBy = &userID
	case models.GearItemStatusCompleted:
		claimedBy = item.ClaimedBy
		if claimedBy == nil {
			claimedBy = &userID
		}
	default:
		return nil, apperrors.NewBadRequestError("invalid gear item status")
	}

	if item.ClaimedBy != nil && *item.ClaimedBy != userID {
		role, err := s.memberRepo.GetRole(ctx, list.GroupID, userID)
		if err != nil {
			return nil, err
		}
		if role != models.GroupRoleOwner && role != models.GroupRoleModerator {
			return nil, apperrors.NewForbiddenError("only the claimant or a group moderator can update this item")
		}
	}

	return s.gearRepo.UpdateItemStatus(ctx, itemID, status, claimedBy)
}

// DeleteItem removes an item; allowed for its creator and group moderators
func (s *gearService) DeleteItem(ctx context.Context, itemID, userID int64) error {
	item, err := s.gearRepo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	list, err := s.gearRepo.GetList(ctx, item.ListID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, list.GroupID, userID); err != nil {
		return err
	}

	if item.AddedBy == nil || *item.AddedBy != userID {
		role, err := s.memberRepo.GetRole(ctx, list.GroupID, userID)
		if err != nil {
			return err
		}
		if role != models.GroupRoleOwner && role != models.GroupRoleModerator {
			return apperrors.NewForbiddenError("only the item's creator or a group moderator can delete it")
		}
	}

	return s.gearRepo.DeleteItem(ctx, itemID)
}
