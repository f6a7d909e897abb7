package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.VendorsScored(3)
	m.ReportFinalized()
	m.RFPGenerated("template")
	m.RFPGenerated("ai_generated")
	m.RFPGenerated("template")
	m.SetStage(4)

	body := scrape(t, m)
	assert.Contains(t, body, "vendoriq_sessions_started_total 1")
	assert.Contains(t, body, "vendoriq_vendors_scored_total 3")
	assert.Contains(t, body, "vendoriq_reports_finalized_total 1")
	assert.Contains(t, body, `vendoriq_rfps_generated_total{source="template"} 2`)
	assert.Contains(t, body, `vendoriq_rfps_generated_total{source="ai_generated"} 1`)
	assert.Contains(t, body, "vendoriq_session_stage 4")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.VendorsScored(1)
	m.ReportFinalized()
	m.RFPGenerated("template")
	m.SetStage(2)
}

func TestMetrics_WrapHandler(t *testing.T) {
	m := New()
	h := m.WrapHandler("/api/session", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `vendoriq_http_requests_total{route="/api/session",status="404"} 1`)
}

func TestMetrics_IndependentInstances(t *testing.T) {
	a := New()
	b := New()
	a.SessionStarted()

	assert.Contains(t, scrape(t, a), "vendoriq_sessions_started_total 1")
	assert.True(t, strings.Contains(scrape(t, b), "vendoriq_sessions_started_total 0"))
}
