package models

import (
	"time"
)

// GearList defines a shared gear checklist based on the 'group_gear_lists' table
type GearList struct {
	ID        int64      `json:"id" db:"id"`
	GroupID   int64      `json:"groupId" db:"group_id"`
	RaceID    *int64     `json:"raceId,omitempty" db:"race_id"`
	Title     string     `json:"title" db:"title"`
	CreatedBy *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	Items     []GearItem `json:"items,omitempty"` // Relation, no db tag
}

// GearItem defines one entry of a gear list based on the 'group_gear_items' table
type GearItem struct {
	ID          int64          `json:"id" db:"id"`
	ListID      int64          `json:"listId" db:"list_id"`
	Description string         `json:"description" db:"description"`
	AddedBy     *int64         `json:"addedBy,omitempty" db:"added_by"`
	ClaimedBy   *int64         `json:"claimedBy,omitempty" db:"claimed_by"`
	Status      GearItemStatus `json:"status" db:"status" example:"needed"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}
