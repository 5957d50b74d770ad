package dto

// CreateGearListRequest represents a gear list creation payload
type CreateGearListRequest struct {
	Title  string `json:"title" binding:"required"`
	RaceID *int64 `json:"raceId"`
}

// CreateGearItemRequest represents a gear item creation payload
type CreateGearItemRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateGearItemRequest represents a gear item status change
type UpdateGearItemRequest struct {
	Status string `json:"status" binding:"required,oneof=needed claimed completed"`
}
