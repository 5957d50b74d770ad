package models

import (
	"time"
)

// Group defines the group model based on the 'groups' table.
// A group with a non-nil RaceID is the auto-provisioned participant group
// for that race; there is at most one per race.
type Group struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" example:"Lisbon Half Marathon - Participants"`
	SportType    string    `json:"sportType" db:"sport_type"`
	City         string    `json:"city" db:"city"`
	Country      string    `json:"country" db:"country"`
	Description  string    `json:"description" db:"description"`
	PasswordHash *string   `json:"-" db:"password_hash"` // Nil for open groups
	BannerURL    string    `json:"bannerUrl" db:"banner_url"`
	RaceID       *int64    `json:"raceId,omitempty" db:"race_id"`
	MemberCount  int       `json:"memberCount" db:"member_count"`
	CreatedBy    *int64    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// GroupMember defines a membership row based on the 'group_members' table
type GroupMember struct {
	ID           int64     `json:"id" db:"id"`
	GroupID      int64     `json:"groupId" db:"group_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Role         GroupRole `json:"role" db:"role" example:"member"`
	JoinedAt     time.Time `json:"joinedAt" db:"joined_at"`
	LastActiveAt time.Time `json:"lastActiveAt" db:"last_active_at"`
	User         *User     `json:"user,omitempty"` // Relation, no db tag
}
