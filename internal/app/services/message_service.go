package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// MessageService handles direct conversations and group chat history
type MessageService interface {
	Conversations(ctx context.Context, userID int64) ([]*dto.ConversationResponse, error)
	OpenConversation(ctx context.Context, userID, otherID int64) (*models.Conversation, []*models.Message, error)
	SendDirect(ctx context.Context, userID, otherID int64, content string) (*models.Message, error)
	GroupMessages(ctx context.Context, groupID, userID int64, limit int) ([]*models.GroupMessage, error)
	SendGroupMessage(ctx context.Context, groupID, userID int64, content string) (*models.GroupMessage, error)
}

type messageService struct {
	conversationRepo *repositories.ConversationRepository
	groupMessageRepo *repositories.GroupMessageRepository
	memberRepo       *repositories.GroupMemberRepository
	logger           zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	conversationRepo *repositories.ConversationRepository,
	groupMessageRepo *repositories.GroupMessageRepository,
	memberRepo *repositories.GroupMemberRepository,
	logger zerolog.Logger,
) MessageService {
	return &messageService{
		conversationRepo: conversationRepo,
		groupMessageRepo: groupMessageRepo,
		memberRepo:       memberRepo,
		logger:           logger,
	}
}

// Conversations lists the caller's conversations with unread counts
func (s *messageService) Conversations(ctx context.Context, userID int64) ([]*dto.ConversationResponse, error) {
	return s.conversationRepo.ListForUser(ctx, userID)
}

// OpenConversation finds or creates the conversation with the other user and
// returns its history. Opening marks the other side's messages read.
func (s *messageService) OpenConversation(ctx context.Context, userID, otherID int64) (*models.Conversation, []*models.Message, error) {
	if userID == otherID {
		return nil, nil, apperrors.NewBadRequestError("cannot message yourself")
	}

	conversation, err := s.conversationRepo.FindOrCreate(ctx, userID, otherID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.conversationRepo.ListMessages(ctx, conversation.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.conversationRepo.MarkRead(ctx, conversation.ID, userID); err != nil {
		return nil, nil, err
	}

	return conversation, messages, nil
}

// SendDirect delivers a direct message, creating the conversation on first
// contact
func (s *messageService) SendDirect(ctx context.Context, userID, otherID int64, content string) (*models.Message, error) {
	if userID == otherID {
		return nil, apperrors.NewBadRequestError("cannot message yourself")
	}

	conversation, err := s.conversationRepo.FindOrCreate(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	return s.conversationRepo.CreateMessage(ctx, conversation.ID, userID, content)
}

// GroupMessages returns group chat history for a member. Fetching marks all
// messages in the group read for the caller and bumps their activity.
func (s *messageService) GroupMessages(ctx context.Context, groupID, userID int64, limit int) ([]*models.GroupMessage, error) {
	member, err := s.memberRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotMember
	}

	messages, err := s.groupMessageRepo.ListByGroup(ctx, groupID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.groupMessageRepo.MarkAllRead(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if err := s.memberRepo.TouchLastActive(ctx, groupID, userID); err != nil {
		s.logger.Warn().Err(err).Int64("groupID", groupID).Msg("Failed to update member activity")
	}

	return messages, nil
}

// SendGroupMessage posts to a group chat over HTTP; members only
func (s *messageService) SendGroupMessage(ctx context.Context, groupID, userID int64, content string) (*models.GroupMessage, error) {
	member, err := s.memberRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotMember
	}

	return s.groupMessageRepo.Create(ctx, &models.GroupMessage{
		GroupID:  groupID,
		SenderID: userID,
		Content:  content,
	})
}
