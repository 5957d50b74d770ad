package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/app/repositories"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/auth"
)

// AuthService handles registration, login and token lifecycle. It also
// implements auth.IdentityLinker for externally verified identities.
type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	ResolveExternalIdentity(ctx context.Context, subject, email, name, picture string) (int64, error)
}

type authService struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.RefreshTokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.RefreshTokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Signup registers a new email+password account
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         req.Name,
		Location:     req.Location,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Str("email", req.Email).Msg("User registered")

	return s.issueTokens(ctx, created)
}

// Login authenticates an email+password account
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Accounts created through an external identity have no local password
	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// fresh pair is issued
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, nil, stored.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// GetProfile returns the current user's profile
func (s *authService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, nil, userID)
}

// ResolveExternalIdentity maps a verified external identity to a local user:
// by subject first, then by verified email with linking, otherwise a new
// account is created just in time.
func (s *authService) ResolveExternalIdentity(ctx context.Context, subject, email, name, picture string) (int64, error) {
	user, err := s.userRepo.GetByFirebaseUID(ctx, subject)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return 0, err
	}

	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			if linkErr := s.userRepo.LinkFirebaseUID(ctx, user.ID, subject); linkErr != nil {
				return 0, linkErr
			}
			s.logger.Info().Int64("userID", user.ID).Msg("Linked external identity to existing account")
			return user.ID, nil
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return 0, err
		}
	}

	if email == "" {
		return 0, apperrors.ErrTokenInvalid
	}

	newUser := &models.User{
		FirebaseUID: &subject,
		Email:       email,
		Name:        name,
		Avatar:      picture,
	}
	userID, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("userID", userID).Msg("Created account from external identity")
	return userID, nil
}

// issueTokens builds the JWT pair, persists the refresh token and assembles
// the auth response
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		User: user,
	}, nil
}
