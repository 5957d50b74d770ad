package dto

import "github.com/lusapp/backend/internal/app/models"

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Location      *string `json:"location"`
	Bio           *string `json:"bio"`
	FavoriteSport *string `json:"favoriteSport"`
}

// PublicProfileResponse represents another user's visible profile
type PublicProfileResponse struct {
	User        *models.User `json:"user"`
	IsFollowing bool         `json:"isFollowing"`
}

// AvatarResponse is returned after a successful avatar upload
type AvatarResponse struct {
	Avatar string `json:"avatar" example:"uploads/avatars/9c2f.jpg"`
}
