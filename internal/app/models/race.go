package models

import (
	"time"
)

// Race defines the race model based on the 'races' table
type Race struct {
	ID                int64      `json:"id" db:"id" example:"42"`
	Name              string     `json:"name" db:"name" example:"Lisbon Half Marathon"`
	Sport             string     `json:"sport" db:"sport" example:"running"`
	SportCategory     string     `json:"sportCategory" db:"sport_category" example:"road"`
	SportSubtype      string     `json:"sportSubtype" db:"sport_subtype" example:"half-marathon"`
	City              string     `json:"city" db:"city" example:"Lisbon"`
	Country           string     `json:"country" db:"country" example:"Portugal"`
	Continent         string     `json:"continent" db:"continent" example:"Europe"`
	Date              *time.Time `json:"date,omitempty" db:"date"`
	StartTime         string     `json:"startTime" db:"start_time" example:"09:00"`
	Distance          string     `json:"distance" db:"distance" example:"21.1km"`
	Description       string     `json:"description" db:"description"`
	Participants      int        `json:"participants" db:"participants"`
	RegisteredUserIDs []int64    `json:"registeredUserIds" db:"registered_user_ids"` // Set of enrolled user IDs
	Status            RaceStatus `json:"status" db:"status" example:"approved"`
	CreatedBy         *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}
