package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/pkg/auth"
)

type stubVerifier struct {
	userID int64
	err    error
	token  string
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (int64, error) {
	s.token = token
	if s.err != nil {
		return 0, s.err
	}
	return s.userID, nil
}

func authTestRouter(verifier auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", NewAuthMiddleware(verifier).RequireAuth(), func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return router
}

func decodeErrorCode(t *testing.T, body []byte) dto.ErrorCode {
	t.Helper()
	var resp dto.APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("response has no error detail")
	}
	return resp.Error.Code
}

func TestRequireAuthValidToken(t *testing.T) {
	verifier := &stubVerifier{userID: 42}
	router := authTestRouter(verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if verifier.token != "good-token" {
		t.Errorf("verifier received %q", verifier.token)
	}

	var body struct {
		UserID int64 `json:"userID"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != 42 {
		t.Errorf("userID = %d, want 42", body.UserID)
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := authTestRouter(&stubVerifier{userID: 42})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := decodeErrorCode(t, w.Body.Bytes()); code != dto.ErrorCodeUnauthorized {
		t.Errorf("error code = %s, want %s", code, dto.ErrorCodeUnauthorized)
	}
}

func TestRequireAuthQueryTokenFallback(t *testing.T) {
	verifier := &stubVerifier{userID: 7}
	router := authTestRouter(verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected?token=ws-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if verifier.token != "ws-token" {
		t.Errorf("verifier received %q, want query token", verifier.token)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router := authTestRouter(&stubVerifier{err: auth.ErrInvalidToken})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := decodeErrorCode(t, w.Body.Bytes()); code != dto.ErrorCodeInvalidToken {
		t.Errorf("error code = %s, want %s", code, dto.ErrorCodeInvalidToken)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	router := authTestRouter(&stubVerifier{err: auth.ErrExpiredToken})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := decodeErrorCode(t, w.Body.Bytes()); code != dto.ErrorCodeExpiredToken {
		t.Errorf("error code = %s, want %s", code, dto.ErrorCodeExpiredToken)
	}
}
