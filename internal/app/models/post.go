package models

import (
	"time"
)

// PostComment is one element of the posts.comments JSONB array.
// Author details are snapshotted at comment time.
type PostComment struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Post defines the post model based on the 'posts' table
type Post struct {
	ID        int64         `json:"id" db:"id"`
	UserID    int64         `json:"userId" db:"user_id"`
	Type      PostType      `json:"type" db:"type" example:"signup"`
	RaceID    *int64        `json:"raceId,omitempty" db:"race_id"`
	Content   string        `json:"content" db:"content"`
	Timestamp time.Time     `json:"timestamp" db:"timestamp"`
	LikedBy   []string      `json:"likedBy" db:"liked_by"` // Set of user IDs as strings
	Comments  []PostComment `json:"comments" db:"comments"`
	User      *User         `json:"user,omitempty"` // Relation, no db tag
	Race      *Race         `json:"race,omitempty"` // Relation, no db tag
}
