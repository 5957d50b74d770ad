package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/helpers"
)

// feedRaceWindow is how far back approved races surface in the feed
const feedRaceWindow = 30 * 24 * time.Hour

// PostService handles activity posts and the merged feed
type PostService interface {
	Create(ctx context.Context, userID int64, req dto.CreatePostRequest) (int64, error)
	Feed(ctx context.Context, page, size int) ([]*dto.FeedItem, dto.PaginationInfo, error)
	Like(ctx context.Context, postID, userID int64) ([]string, error)
	Unlike(ctx context.Context, postID, userID int64) ([]string, error)
	Comment(ctx context.Context, postID, userID int64, text string) ([]models.PostComment, error)
}

type postService struct {
	postRepo         *repositories.PostRepository
	raceRepo         *repositories.RaceRepository
	userRepo         *repositories.UserRepository
	notificationRepo *repositories.NotificationRepository
	logger           zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo *repositories.PostRepository,
	raceRepo *repositories.RaceRepository,
	userRepo *repositories.UserRepository,
	notificationRepo *repositories.NotificationRepository,
	logger zerolog.Logger,
) PostService {
	return &postService{
		postRepo:         postRepo,
		raceRepo:         raceRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create adds a user post. Signup and completion posts must reference a race.
func (s *postService) Create(ctx context.Context, userID int64, req dto.CreatePostRequest) (int64, error) {
	postType := models.PostType(req.Type)

	if (postType == models.PostTypeSignup || postType == models.PostTypeCompletion) && req.RaceID == nil {
		return 0, apperrors.NewBadRequestError("raceId is required for signup and completion posts")
	}

	if req.RaceID != nil {
		if _, err := s.raceRepo.GetByID(ctx, nil, *req.RaceID); err != nil {
			return 0, err
		}
	}

	post := &models.Post{
		UserID:  userID,
		Type:    postType,
		RaceID:  req.RaceID,
		Content: req.Content,
	}

	return s.postRepo.Create(ctx, nil, post)
}

// Feed returns posts merged with recently approved races, newest first.
// Races from the last 30 days appear as new_race items.
func (s *postService) Feed(ctx context.Context, page, size int) ([]*dto.FeedItem, dto.PaginationInfo, error) {
	offset := uint64((page - 1) * size)

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	posts, err := s.postRepo.ListFeed(ctx, offset, size)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	items := make([]*dto.FeedItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, &dto.FeedItem{
			Type:      string(post.Type),
			Timestamp: post.Timestamp,
			Post:      post,
		})
	}

	// Race announcements only join the first page; deeper pages are pure posts
	if page == 1 {
		races, err := s.raceRepo.ListApprovedSince(ctx, time.Now().Add(-feedRaceWindow), size)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		for _, race := range races {
			items = append(items, &dto.FeedItem{
				Type:      "new_race",
				Timestamp: race.CreatedAt,
				Race:      race,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	return items, helpers.NewPaginationInfo(total, page, size), nil
}

// Like adds the caller to the post's liked_by set
func (s *postService) Like(ctx context.Context, postID, userID int64) ([]string, error) {
	return s.postRepo.AddLike(ctx, postID, strconv.FormatInt(userID, 10))
}

// Unlike removes the caller from the post's liked_by set
func (s *postService) Unlike(ctx context.Context, postID, userID int64) ([]string, error) {
	return s.postRepo.RemoveLike(ctx, postID, strconv.FormatInt(userID, 10))
}

// Comment appends a comment with an author snapshot and notifies the post
// owner
func (s *postService) Comment(ctx context.Context, postID, userID int64, text string) ([]models.PostComment, error) {
	author, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	comment := models.PostComment{
		ID:        uuid.New().String(),
		UserID:    userID,
		UserName:  author.Name,
		Avatar:    author.Avatar,
		Text:      text,
		Timestamp: time.Now(),
	}

	comments, err := s.postRepo.AppendComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.postRepo.GetOwnerID(ctx, postID)
	if err == nil && ownerID != userID {
		_, err = s.notificationRepo.Create(ctx, &models.Notification{
			UserID:  ownerID,
			Type:    models.NotificationTypeComment,
			ActorID: &userID,
			PostID:  &postID,
			Message: author.Name + " commented on your post",
		})
		if err != nil {
			s.logger.Warn().Err(err).Int64("postID", postID).Msg("Failed to create comment notification")
		}
	}

	return comments, nil
}
