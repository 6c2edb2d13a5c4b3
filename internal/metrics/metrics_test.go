package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordImport(t *testing.T) {
	m := New()
	m.RecordImport("api", "created")
	m.RecordImport("api", "created")
	m.RecordImport("api", "existing")

	if got := testutil.ToFloat64(m.MatchImports.WithLabelValues("api", "created")); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MatchImports.WithLabelValues("api", "existing")); got != 1 {
		t.Errorf("existing = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordImport("api", "created")
	m.RecordSettlement("winner")
	m.RecordOddUpdate()
	m.RecordOddsFeed("error")
	m.RecordGuardRejection("role")
	m.ObserveRequest("GET", "/health", "200", 0.01)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordSettlement("winner")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "betx_market_settlements_total") {
		t.Errorf("metrics output missing settlement counter")
	}
}
