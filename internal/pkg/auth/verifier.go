package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"

	"github.com/lusapp/backend/internal/pkg/logger"
)

// ErrNotMine signals that a verifier does not recognize the token shape and
// the next verifier in the chain should try it.
var ErrNotMine = errors.New("token not issued by this verifier")

// Verifier authenticates a bearer token and resolves it to a local user ID.
type Verifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

// VerifierChain tries each verifier in order. The first verifier that
// recognizes the token decides the outcome; ErrNotMine passes control to the
// next one.
type VerifierChain struct {
	verifiers []Verifier
}

// NewVerifierChain builds a chain from the given verifiers
func NewVerifierChain(verifiers ...Verifier) *VerifierChain {
	return &VerifierChain{verifiers: verifiers}
}

// Verify runs the chain
func (c *VerifierChain) Verify(ctx context.Context, token string) (int64, error) {
	for _, v := range c.verifiers {
		userID, err := v.Verify(ctx, token)
		if errors.Is(err, ErrNotMine) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return userID, nil
	}
	return 0, ErrInvalidToken
}

// BackendVerifier accepts tokens issued by this backend.
type BackendVerifier struct {
	jwtService *JWTService
}

// NewBackendVerifier creates a verifier for backend-issued JWTs
func NewBackendVerifier(jwtService *JWTService) *BackendVerifier {
	return &BackendVerifier{jwtService: jwtService}
}

// Verify validates a backend JWT. An expired backend token is terminal; a
// token that does not parse as ours is handed to the next verifier.
func (v *BackendVerifier) Verify(ctx context.Context, token string) (int64, error) {
	claims, err := v.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return 0, ErrExpiredToken
		}
		return 0, ErrNotMine
	}
	return claims.UserID, nil
}

// IdentityLinker resolves a verified external identity to a local account,
// creating or linking one when needed.
type IdentityLinker interface {
	ResolveExternalIdentity(ctx context.Context, subject, email, name, picture string) (int64, error)
}

// validateFn matches idtoken.Validate; swappable in tests
type validateFn func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier accepts Google-issued ID tokens for the configured audience
// and just-in-time links them to local accounts.
type GoogleVerifier struct {
	audience string
	linker   IdentityLinker
	validate validateFn
}

// NewGoogleVerifier creates a verifier for Google ID tokens
func NewGoogleVerifier(audience string, linker IdentityLinker) *GoogleVerifier {
	return &GoogleVerifier{
		audience: audience,
		linker:   linker,
		validate: idtoken.Validate,
	}
}

// Verify validates a Google ID token and resolves the local user
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (int64, error) {
	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		logger.Debug().Err(err).Msg("Google ID token validation failed")
		return 0, ErrInvalidToken
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	userID, err := v.linker.ResolveExternalIdentity(ctx, payload.Subject, email, name, picture)
	if err != nil {
		return 0, err
	}
	return userID, nil
}
