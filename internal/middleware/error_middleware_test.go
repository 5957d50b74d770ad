package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

func TestHandleAPIErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid race id", apperrors.ErrInvalidRaceID, 400, dto.ErrorCodeInvalidRaceID},
		{"race not found", apperrors.ErrRaceNotFound, 404, dto.ErrorCodeRaceNotFound},
		{"duplicate race", apperrors.ErrDuplicateRace, 409, dto.ErrorCodeDuplicateRace},
		{"group not found", apperrors.ErrGroupNotFound, 404, dto.ErrorCodeGroupNotFound},
		{"password needed", apperrors.ErrGroupPasswordNeeded, 403, dto.ErrorCodeGroupPasswordError},
		{"wrong password", apperrors.ErrGroupWrongPassword, 403, dto.ErrorCodeGroupPasswordError},
		{"already member", apperrors.ErrAlreadyMember, 409, dto.ErrorCodeAlreadyMember},
		{"not member", apperrors.ErrNotMember, 403, dto.ErrorCodeNotMember},
		{"owner cannot leave", apperrors.ErrOwnerCannotLeave, 409, dto.ErrorCodeConflict},
		{"user not found", apperrors.ErrUserNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"post not found", apperrors.ErrPostNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"permission denied", apperrors.ErrPermissionDenied, 403, dto.ErrorCodeForbidden},
		{"invalid credentials", apperrors.ErrInvalidCredentials, 401, dto.ErrorCodeInvalidCredentials},
		{"token expired", apperrors.ErrTokenExpired, 401, dto.ErrorCodeExpiredToken},
		{"email taken", apperrors.ErrEmailAlreadyExists, 409, dto.ErrorCodeResourceAlreadyExists},
		{"bad request", apperrors.NewBadRequestError("raceId is required"), 400, dto.ErrorCodeValidationFailed},
		{"transaction failure", apperrors.NewCustomError(apperrors.ErrTransactionFailed, "failed to commit transaction"), 500, dto.ErrorCodeDatabaseError},
		{"wrapped sentinel", fmt.Errorf("joining race: %w", apperrors.ErrRaceNotFound), 404, dto.ErrorCodeRaceNotFound},
		{"unknown error", errors.New("pool exhausted"), 500, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if code := decodeErrorCode(t, w.Body.Bytes()); code != tt.wantCode {
				t.Errorf("error code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}
