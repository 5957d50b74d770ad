package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/lusapp/backend/internal/app/models"
)

func newTestJWTService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "lusapp.test",
	})
}

func issueToken(t *testing.T, svc *JWTService, userID int64) string {
	t.Helper()
	access, _, _, _, err := svc.GenerateTokenPair(&models.User{ID: userID, Email: "runner@example.com"})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	return access
}

type fakeLinker struct {
	userID  int64
	err     error
	subject string
	email   string
	name    string
	picture string
	calls   int
}

func (f *fakeLinker) ResolveExternalIdentity(ctx context.Context, subject, email, name, picture string) (int64, error) {
	f.calls++
	f.subject, f.email, f.name, f.picture = subject, email, name, picture
	if f.err != nil {
		return 0, f.err
	}
	return f.userID, nil
}

func stubGoogleVerifier(linker IdentityLinker, payload *idtoken.Payload, err error) *GoogleVerifier {
	v := NewGoogleVerifier("test-audience", linker)
	v.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if audience != "test-audience" {
			return nil, errors.New("unexpected audience")
		}
		return payload, err
	}
	return v
}

func TestBackendVerifierAcceptsOwnToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 42)

	userID, err := NewBackendVerifier(svc).Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestBackendVerifierExpiredTokenIsTerminal(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	token := issueToken(t, svc, 42)

	_, err := NewBackendVerifier(svc).Verify(context.Background(), token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestBackendVerifierDisownsForeignToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	_, err := NewBackendVerifier(svc).Verify(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrNotMine) {
		t.Fatalf("err = %v, want ErrNotMine", err)
	}
}

func TestGoogleVerifierLinksIdentity(t *testing.T) {
	linker := &fakeLinker{userID: 7}
	v := stubGoogleVerifier(linker, &idtoken.Payload{
		Subject: "google-sub-123",
		Claims: map[string]interface{}{
			"email":   "runner@example.com",
			"name":    "Test Runner",
			"picture": "https://example.com/p.jpg",
		},
	}, nil)

	userID, err := v.Verify(context.Background(), "google-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
	if linker.subject != "google-sub-123" || linker.email != "runner@example.com" {
		t.Errorf("linker received subject=%q email=%q", linker.subject, linker.email)
	}
	if linker.name != "Test Runner" || linker.picture != "https://example.com/p.jpg" {
		t.Errorf("linker received name=%q picture=%q", linker.name, linker.picture)
	}
}

func TestGoogleVerifierRejectsInvalidToken(t *testing.T) {
	linker := &fakeLinker{userID: 7}
	v := stubGoogleVerifier(linker, nil, errors.New("idtoken: signature mismatch"))

	_, err := v.Verify(context.Background(), "bad-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if linker.calls != 0 {
		t.Errorf("linker called %d times for invalid token", linker.calls)
	}
}

func TestGoogleVerifierPropagatesLinkerError(t *testing.T) {
	linkErr := errors.New("account disabled")
	linker := &fakeLinker{err: linkErr}
	v := stubGoogleVerifier(linker, &idtoken.Payload{Subject: "sub"}, nil)

	_, err := v.Verify(context.Background(), "google-token")
	if !errors.Is(err, linkErr) {
		t.Fatalf("err = %v, want linker error", err)
	}
}

func TestChainBackendTokenNeverReachesGoogle(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 13)

	linker := &fakeLinker{userID: 99}
	google := stubGoogleVerifier(linker, &idtoken.Payload{Subject: "sub"}, nil)
	chain := NewVerifierChain(NewBackendVerifier(svc), google)

	userID, err := chain.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 13 {
		t.Errorf("userID = %d, want 13", userID)
	}
	if linker.calls != 0 {
		t.Errorf("Google verifier consulted for a backend token")
	}
}

func TestChainFallsThroughToGoogle(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	linker := &fakeLinker{userID: 21}
	google := stubGoogleVerifier(linker, &idtoken.Payload{
		Subject: "google-sub",
		Claims:  map[string]interface{}{"email": "runner@example.com"},
	}, nil)
	chain := NewVerifierChain(NewBackendVerifier(svc), google)

	userID, err := chain.Verify(context.Background(), "opaque-google-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 21 {
		t.Errorf("userID = %d, want 21", userID)
	}
	if linker.calls != 1 {
		t.Errorf("linker calls = %d, want 1", linker.calls)
	}
}

func TestChainExpiredBackendTokenStopsChain(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	token := issueToken(t, svc, 13)

	linker := &fakeLinker{userID: 99}
	google := stubGoogleVerifier(linker, &idtoken.Payload{Subject: "sub"}, nil)
	chain := NewVerifierChain(NewBackendVerifier(svc), google)

	_, err := chain.Verify(context.Background(), token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
	if linker.calls != 0 {
		t.Errorf("Google verifier consulted after terminal backend error")
	}
}

func TestChainRejectsUnclaimedToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	chain := NewVerifierChain(NewBackendVerifier(svc))

	_, err := chain.Verify(context.Background(), "garbage")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
