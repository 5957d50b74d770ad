package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/db"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/dberrors"
	"github.com/lusapp/backend/internal/pkg/metrics"
)

// enrollmentUserStore is the slice of the user repository the coordinator needs
type enrollmentUserStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.User, error)
	AddJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error)
	RemoveJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error)
	AddCompletedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, bool, error)
}

type enrollmentRaceStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.Race, error)
	AddRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error)
	RemoveRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error)
}

type enrollmentGroupStore interface {
	CreateForRace(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, bool, error)
	GetIDByRaceID(ctx context.Context, tx pgx.Tx, raceID int64) (int64, error)
	RecomputeMemberCount(ctx context.Context, tx pgx.Tx, groupID int64) (int, error)
}

type enrollmentMemberStore interface {
	AddMember(ctx context.Context, tx pgx.Tx, groupID, userID int64, role models.GroupRole) (bool, error)
}

type enrollmentPostStore interface {
	Create(ctx context.Context, tx pgx.Tx, post *models.Post) (int64, error)
	HasCompletionPost(ctx context.Context, tx pgx.Tx, userID, raceID int64) (bool, error)
}

// EnrollmentService coordinates race enrollment: membership bookkeeping,
// participant group provisioning, group linking and the activity
// announcement, all inside one transaction.
type EnrollmentService interface {
	JoinRace(ctx context.Context, raceID, userID int64) (*dto.JoinRaceResponse, error)
	LeaveRace(ctx context.Context, raceID, userID int64) (*dto.LeaveRaceResponse, error)
	CompleteRace(ctx context.Context, raceID, userID int64) (*dto.CompleteRaceResponse, error)
}

type enrollmentService struct {
	txRunner  db.TxRunner
	users     enrollmentUserStore
	races     enrollmentRaceStore
	groups    enrollmentGroupStore
	members   enrollmentMemberStore
	posts     enrollmentPostStore
	collector *metrics.Collector
	logger    zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	txRunner db.TxRunner,
	users enrollmentUserStore,
	races enrollmentRaceStore,
	groups enrollmentGroupStore,
	members enrollmentMemberStore,
	posts enrollmentPostStore,
	collector *metrics.Collector,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		txRunner:  txRunner,
		users:     users,
		races:     races,
		groups:    groups,
		members:   members,
		posts:     posts,
		collector: collector,
		logger:    logger,
	}
}

// JoinRace enrolls a user in a race. The whole workflow commits or rolls
// back as a unit; re-running it converges on the same state apart from the
// signup announcement, which is emitted on every successful run.
func (s *enrollmentService) JoinRace(ctx context.Context, raceID, userID int64) (*dto.JoinRaceResponse, error) {
	if raceID <= 0 {
		return nil, apperrors.ErrInvalidRaceID
	}

	var response dto.JoinRaceResponse

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		race, err := s.races.GetByID(ctx, tx, raceID)
		if err != nil {
			return err
		}

		if _, err := s.users.GetByID(ctx, tx, userID); err != nil {
			return err
		}

		// Membership recording: distinct-union on both sides
		joined, err := s.users.AddJoinedRace(ctx, tx, userID, raceID)
		if err != nil {
			return err
		}
		if _, err := s.races.AddRegisteredUser(ctx, tx, raceID, userID); err != nil {
			return err
		}

		groupID, err := s.provisionGroup(ctx, tx, race, userID)
		if err != nil {
			return err
		}

		// Linking: no-op for repeat joins, existing roles are never touched
		if _, err := s.members.AddMember(ctx, tx, groupID, userID, models.GroupRoleMember); err != nil {
			return err
		}
		if _, err := s.groups.RecomputeMemberCount(ctx, tx, groupID); err != nil {
			return err
		}

		// Announcement: one post per successful join, duplicates included
		post := &models.Post{
			UserID: userID,
			Type:   models.PostTypeSignup,
			RaceID: &raceID,
		}
		if _, err := s.posts.Create(ctx, tx, post); err != nil {
			return err
		}

		response = dto.JoinRaceResponse{
			JoinedRaces: joined,
			GroupID:     groupID,
		}
		return nil
	})

	if err != nil {
		if s.collector != nil {
			s.collector.RecordEnrollmentFailure()
		}
		s.logger.Error().Err(err).Int64("raceID", raceID).Int64("userID", userID).Msg("Race enrollment failed")
		return nil, err
	}

	if s.collector != nil {
		s.collector.RecordEnrollment()
	}
	s.logger.Info().Int64("raceID", raceID).Int64("userID", userID).Int64("groupID", response.GroupID).Msg("User enrolled in race")

	return &response, nil
}

// provisionGroup returns the race's participant group ID, creating the group
// when it does not exist yet. Exactly one group per race: the insert is
// guarded by the partial unique index, and every losing path re-reads the
// winner's row inside the same transaction.
func (s *enrollmentService) provisionGroup(ctx context.Context, tx pgx.Tx, race *models.Race, creatorID int64) (int64, error) {
	group := &models.Group{
		Name:        fmt.Sprintf("%s - Participants", race.Name),
		SportType:   race.Sport,
		City:        race.City,
		Country:     race.Country,
		Description: fmt.Sprintf("Group for participants of %s", race.Name),
		RaceID:      &race.ID,
		CreatedBy:   &creatorID,
	}

	groupID, created, err := s.insertRaceGroup(ctx, tx, group)
	if err != nil {
		if !dberrors.IsUniqueViolation(err) {
			return 0, err
		}
		created = false
	}
	if created {
		return groupID, nil
	}

	return s.groups.GetIDByRaceID(ctx, tx, race.ID)
}

// insertRaceGroup runs the group insert inside a savepoint. A raised unique
// violation then aborts only the insert, keeping the enclosing transaction
// usable for the fallback re-read.
func (s *enrollmentService) insertRaceGroup(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return 0, false, err
	}

	groupID, created, err := s.groups.CreateForRace(ctx, sp, group)
	if err != nil {
		_ = sp.Rollback(ctx)
		return 0, false, err
	}

	if err := sp.Commit(ctx); err != nil {
		return 0, false, err
	}
	return groupID, created, nil
}

// LeaveRace withdraws a user from a race. Only the two membership sets are
// touched; the participant group and its member rows stay as they are.
func (s *enrollmentService) LeaveRace(ctx context.Context, raceID, userID int64) (*dto.LeaveRaceResponse, error) {
	if raceID <= 0 {
		return nil, apperrors.ErrInvalidRaceID
	}

	var response dto.LeaveRaceResponse

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.races.GetByID(ctx, tx, raceID); err != nil {
			return err
		}

		joined, err := s.users.RemoveJoinedRace(ctx, tx, userID, raceID)
		if err != nil {
			return err
		}
		if _, err := s.races.RemoveRegisteredUser(ctx, tx, raceID, userID); err != nil {
			return err
		}

		response = dto.LeaveRaceResponse{JoinedRaces: joined}
		return nil
	})

	if err != nil {
		s.logger.Error().Err(err).Int64("raceID", raceID).Int64("userID", userID).Msg("Race withdrawal failed")
		return nil, err
	}

	return &response, nil
}

// CompleteRace marks a race as completed for the user. total_races only
// moves when the race is newly completed, and unlike signups the completion
// announcement is deduplicated per user and race.
func (s *enrollmentService) CompleteRace(ctx context.Context, raceID, userID int64) (*dto.CompleteRaceResponse, error) {
	if raceID <= 0 {
		return nil, apperrors.ErrInvalidRaceID
	}

	var response dto.CompleteRaceResponse

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.races.GetByID(ctx, tx, raceID); err != nil {
			return err
		}

		completed, _, err := s.users.AddCompletedRace(ctx, tx, userID, raceID)
		if err != nil {
			return err
		}

		hasPost, err := s.posts.HasCompletionPost(ctx, tx, userID, raceID)
		if err != nil {
			return err
		}
		if !hasPost {
			post := &models.Post{
				UserID: userID,
				Type:   models.PostTypeCompletion,
				RaceID: &raceID,
			}
			if _, err := s.posts.Create(ctx, tx, post); err != nil {
				return err
			}
		}

		user, err := s.users.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		response = dto.CompleteRaceResponse{
			CompletedRaces: completed,
			TotalRaces:     user.TotalRaces,
		}
		return nil
	})

	if err != nil {
		s.logger.Error().Err(err).Int64("raceID", raceID).Int64("userID", userID).Msg("Race completion failed")
		return nil, err
	}

	return &response, nil
}
