package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	FirebaseUID    *string   `json:"-" db:"firebase_uid"`                           // External identity subject (nullable)
	Email          string    `json:"email" db:"email" example:"runner@example.com"` // User's email address
	PasswordHash   *string   `json:"-" db:"password_hash"`                          // Nil for external-identity accounts
	Name           string    `json:"name" db:"name" example:"Jane Runner"`
	Location       string    `json:"location" db:"location" example:"Lisbon, Portugal"`
	Bio            string    `json:"bio" db:"bio"`
	FavoriteSport  string    `json:"favoriteSport" db:"favorite_sport" example:"trail running"`
	Avatar         string    `json:"avatar" db:"avatar" example:"uploads/avatars/abc.jpg"`
	TotalRaces     int       `json:"totalRaces" db:"total_races"`       // Count of distinct completed races
	JoinedRaces    []int64   `json:"joinedRaces" db:"joined_races"`     // Set of race IDs the user enrolled in
	CompletedRaces []int64   `json:"completedRaces" db:"completed_races"`
	Following      []int64   `json:"following" db:"following"`
	Followers      []int64   `json:"followers" db:"followers"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
