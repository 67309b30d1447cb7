package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	ComplaintsCreated  prometheus.Counter
	SuggestionsCreated prometheus.Counter
	AttendanceMarked   *prometheus.CounterVec
	InvoicesIssued     prometheus.Counter
	InvoicesPaid       prometheus.Counter
	MenuCacheTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostelhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostelhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ComplaintsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hostelhub_complaints_created_total",
				Help: "Total number of complaints filed",
			},
		),
		SuggestionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hostelhub_suggestions_created_total",
				Help: "Total number of suggestions submitted",
			},
		),
		AttendanceMarked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostelhub_attendance_marked_total",
				Help: "Total number of attendance records written",
			},
			[]string{"status"},
		),
		InvoicesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hostelhub_invoices_issued_total",
				Help: "Total number of invoices issued",
			},
		),
		InvoicesPaid: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hostelhub_invoices_paid_total",
				Help: "Total number of invoices paid",
			},
		),
		MenuCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostelhub_menu_cache_total",
				Help: "Mess menu cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ComplaintsCreated,
		m.SuggestionsCreated,
		m.AttendanceMarked,
		m.InvoicesIssued,
		m.InvoicesPaid,
		m.MenuCacheTotal,
	)

	return m
}

// Middleware records request counts and latency keyed by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recorders below are safe on a nil *Metrics so services can run without a registry.

func (m *Metrics) ComplaintCreated() {
	if m != nil {
		m.ComplaintsCreated.Inc()
	}
}

func (m *Metrics) SuggestionCreated() {
	if m != nil {
		m.SuggestionsCreated.Inc()
	}
}

func (m *Metrics) AttendanceWritten(status string) {
	if m != nil {
		m.AttendanceMarked.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) InvoiceIssued() {
	if m != nil {
		m.InvoicesIssued.Inc()
	}
}

func (m *Metrics) InvoicePaid() {
	if m != nil {
		m.InvoicesPaid.Inc()
	}
}

func (m *Metrics) MenuCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.MenuCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	m.MenuCacheTotal.WithLabelValues("miss").Inc()
}
