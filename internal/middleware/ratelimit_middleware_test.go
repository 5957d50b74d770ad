package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func rateLimitTestRouter(limit rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/login", NewRateLimiter(limit, burst).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	router := rateLimitTestRouter(rate.Limit(1), 3)

	for i := 0; i < 3; i++ {
		if code := doRequest(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	router := rateLimitTestRouter(rate.Limit(0.001), 2)

	doRequest(router, "10.0.0.1:1234")
	doRequest(router, "10.0.0.1:1234")

	if code := doRequest(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", code)
	}
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	router := rateLimitTestRouter(rate.Limit(0.001), 1)

	if code := doRequest(router, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", code)
	}
	if code := doRequest(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: status = %d, want 429", code)
	}
	if code := doRequest(router, "10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("second client: status = %d, want 200", code)
	}
}
