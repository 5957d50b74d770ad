// Package metrics provides Prometheus metric collection and exposure.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the backend's Prometheus metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	enrollments     prometheus.Counter
	enrollmentFails prometheus.Counter
	wsConnections   prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lusapp_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lusapp_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		enrollments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lusapp_race_enrollments_total",
			Help: "Total successful race enrollments",
		}),
		enrollmentFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lusapp_race_enrollment_failures_total",
			Help: "Total failed race enrollment transactions",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lusapp_websocket_connections",
			Help: "Currently open websocket connections",
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.enrollments,
		c.enrollmentFails,
		c.wsConnections,
	)

	return c
}

// RecordRequest records one handled HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEnrollment records a successful race enrollment.
func (c *Collector) RecordEnrollment() {
	c.enrollments.Inc()
}

// RecordEnrollmentFailure records a rolled-back enrollment transaction.
func (c *Collector) RecordEnrollmentFailure() {
	c.enrollmentFails.Inc()
}

// WebsocketOpened increments the open-connection gauge.
func (c *Collector) WebsocketOpened() {
	c.wsConnections.Inc()
}

// WebsocketClosed decrements the open-connection gauge.
func (c *Collector) WebsocketClosed() {
	c.wsConnections.Dec()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
