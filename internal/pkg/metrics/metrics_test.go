package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/api/races", 200, 15*time.Millisecond)
	c.RecordRequest("GET", "/api/races", 200, 20*time.Millisecond)
	c.RecordRequest("POST", "/api/races/:id/join", 409, 5*time.Millisecond)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/api/races", "200")); got != 2 {
		t.Errorf("requests total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "/api/races/:id/join", "409")); got != 1 {
		t.Errorf("requests total = %v, want 1", got)
	}
}

func TestCollectorEnrollmentCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEnrollment()
	c.RecordEnrollment()
	c.RecordEnrollmentFailure()

	if got := testutil.ToFloat64(c.enrollments); got != 2 {
		t.Errorf("enrollments = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.enrollmentFails); got != 1 {
		t.Errorf("enrollment failures = %v, want 1", got)
	}
}

func TestCollectorWebsocketGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.WebsocketOpened()
	c.WebsocketOpened()
	c.WebsocketClosed()

	if got := testutil.ToFloat64(c.wsConnections); got != 1 {
		t.Errorf("websocket connections = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordEnrollment()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lusapp_race_enrollments_total 1") {
		t.Errorf("scrape output missing enrollment counter:\n%s", w.Body.String())
	}
}
