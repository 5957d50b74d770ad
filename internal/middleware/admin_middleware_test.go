package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func adminTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin/races", AdminAuth("admin", "sekret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAdminAuthAcceptsValidCredentials(t *testing.T) {
	router := adminTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/races", nil)
	req.SetBasicAuth("admin", "sekret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAdminAuthRejectsBadCredentials(t *testing.T) {
	tests := []struct {
		name       string
		user, pass string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong user", "root", "sekret"},
		{"both wrong", "root", "nope"},
	}

	router := adminTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/races", nil)
			req.SetBasicAuth(tt.user, tt.pass)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAdminAuthRejectsMissingCredentials(t *testing.T) {
	router := adminTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/races", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got == "" {
		t.Error("missing WWW-Authenticate header")
	}
}
