// Package metrics provides Prometheus metric collection.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the metric collector.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	bookingsCreatedTotal *prometheus.CounterVec
	transitionsTotal     *prometheus.CounterVec
	ticketViewsTotal     *prometheus.CounterVec
	settlementsTotal     *prometheus.CounterVec
	settlementCycles     prometheus.Counter
}

// New creates the metric collector, registering with reg (or the default
// registerer when reg is nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		bookingsCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings created by property type.",
		}, []string{"property_type"}),
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions by target status and outcome.",
		}, []string{"to_status", "outcome"}),
		ticketViewsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_views_total",
			Help: "E-ticket gate results.",
		}, []string{"result"}),
		settlementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commission_settlements_total",
			Help: "Per-booking settlement results.",
		}, []string{"result"}),
		settlementCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "commission_cycles_total",
			Help: "Distribution cycles executed.",
		}),
	}
}

// BookingCreated records a created booking.
func (m *Metrics) BookingCreated(propertyType string) {
	m.bookingsCreatedTotal.WithLabelValues(propertyType).Inc()
}

// TransitionApplied records a state machine outcome
// (applied, noop, rejected).
func (m *Metrics) TransitionApplied(toStatus, outcome string) {
	m.transitionsTotal.WithLabelValues(toStatus, outcome).Inc()
}

// TicketView records a gate result (full, pending, expired, unavailable).
func (m *Metrics) TicketView(result string) {
	m.ticketViewsTotal.WithLabelValues(result).Inc()
}

// SettlementResult records a per-booking settlement result
// (distributed, skipped, failed).
func (m *Metrics) SettlementResult(result string) {
	m.settlementsTotal.WithLabelValues(result).Inc()
}

// CycleExecuted records a completed distribution cycle.
func (m *Metrics) CycleExecuted() {
	m.settlementCycles.Inc()
}

// GinMiddleware records request counts and latency.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the /metrics handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
