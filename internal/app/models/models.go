package models

// RaceStatus represents the moderation state of a race
type RaceStatus string

const (
	RaceStatusPending  RaceStatus = "pending"
	RaceStatusApproved RaceStatus = "approved"
	RaceStatusRejected RaceStatus = "rejected"
)

// GroupRole represents a member's role within a group
type GroupRole string

const (
	GroupRoleOwner     GroupRole = "owner"
	GroupRoleModerator GroupRole = "moderator"
	GroupRoleMember    GroupRole = "member"
)

// PostType represents the kind of activity a post announces
type PostType string

const (
	PostTypeSignup      PostType = "signup"
	PostTypeCompletion  PostType = "completion"
	PostTypeRaceCreated PostType = "race_created"
	PostTypeGeneral     PostType = "general"
)

// GearItemStatus represents the lifecycle of a gear item
type GearItemStatus string

const (
	GearItemStatusNeeded    GearItemStatus = "needed"
	GearItemStatusClaimed   GearItemStatus = "claimed"
	GearItemStatusCompleted GearItemStatus = "completed"
)

// NotificationType values created by the backend
const (
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
)
