package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.EntryRecorded("giving")
	m.EntryRecorded("giving")
	m.EntryRecorded("expense")
	m.ApprovalAttempt("not_found")
	m.AccessDenied()
	m.PublishFailed()
	m.RateLimited()
	m.ObserveRequest(http.MethodPost, http.StatusSeeOther, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.ledgerEntries.WithLabelValues("giving")); got != 2 {
		t.Errorf("giving entries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.approvals.WithLabelValues("not_found")); got != 1 {
		t.Errorf("approvals = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.accessDenied); got != 1 {
		t.Errorf("access denied = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "303")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AccessDenied()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "churchledger_access_denied_total 1") {
		t.Errorf("exposition missing counter:\n%s", rec.Body.String())
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.EntryRecorded("giving")
	m.ApprovalAttempt("approved")
	m.AccessDenied()
	m.PublishFailed()
	m.RateLimited()
	m.ObserveRequest(http.MethodGet, 200, time.Millisecond)
	if m.Registry() != nil {
		t.Error("nil metrics returned a registry")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
