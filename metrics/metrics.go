// Package metrics exposes prometheus collectors for the selection workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the workflow collectors. All methods are nil-safe so
// instrumentation points never need guarding at the call site.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted  prometheus.Counter
	vendorsScored    prometheus.Counter
	reportsFinalized prometheus.Counter
	rfpsGenerated    *prometheus.CounterVec
	currentStage     prometheus.Gauge

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates and registers the collectors on a private registry, so tests
// can hold several instances without collisions.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vendoriq_sessions_started_total",
			Help: "Total selection sessions started, including resets.",
		}),
		vendorsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vendoriq_vendors_scored_total",
			Help: "Total vendors run through the scoring pass.",
		}),
		reportsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vendoriq_reports_finalized_total",
			Help: "Total final reports generated.",
		}),
		rfpsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoriq_rfps_generated_total",
			Help: "Total RFP documents generated by template source.",
		}, []string{"source"}),
		currentStage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vendoriq_session_stage",
			Help: "Current wizard stage number of the active session (1-6).",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoriq_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vendoriq_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.sessionsStarted,
		m.vendorsScored,
		m.reportsFinalized,
		m.rfpsGenerated,
		m.currentStage,
		m.httpRequestsTotal,
		m.httpDuration,
	)

	m.currentStage.Set(1)

	return m
}

// SessionStarted records a fresh session or reset.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// VendorsScored records a completed scoring pass over n vendors.
func (m *Metrics) VendorsScored(n int) {
	if m == nil {
		return
	}
	m.vendorsScored.Add(float64(n))
}

// ReportFinalized records a generated final report.
func (m *Metrics) ReportFinalized() {
	if m == nil {
		return
	}
	m.reportsFinalized.Inc()
}

// RFPGenerated records a generated RFP document by template source.
func (m *Metrics) RFPGenerated(source string) {
	if m == nil {
		return
	}
	m.rfpsGenerated.WithLabelValues(source).Inc()
}

// SetStage records the active session's wizard stage number.
func (m *Metrics) SetStage(n int) {
	if m == nil {
		return
	}
	m.currentStage.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler instruments a route with request count and duration.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler serves the /metrics scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
