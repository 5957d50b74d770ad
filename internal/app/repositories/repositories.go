package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx.
// Repository methods that participate in transactions run on whichever the
// caller provides.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queryable returns tx when present, otherwise the pool
func queryable(db *pgxpool.Pool, tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return db
}

// Repositories bundles all repository instances
type Repositories struct {
	User         *UserRepository
	Race         *RaceRepository
	Group        *GroupRepository
	GroupMember  *GroupMemberRepository
	Post         *PostRepository
	Conversation *ConversationRepository
	GroupMessage *GroupMessageRepository
	Notification *NotificationRepository
	Gear         *GearRepository
	RefreshToken *RefreshTokenRepository
}

// NewRepositories creates all repositories backed by the given pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Race:         NewRaceRepository(db),
		Group:        NewGroupRepository(db),
		GroupMember:  NewGroupMemberRepository(db),
		Post:         NewPostRepository(db),
		Conversation: NewConversationRepository(db),
		GroupMessage: NewGroupMessageRepository(db),
		Notification: NewNotificationRepository(db),
		Gear:         NewGearRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
