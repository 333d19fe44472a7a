package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mednet-labs/studyguard"
)

type stubSource struct {
	counters map[studyguard.MetricID]uint64
	dropped  uint64
}

func (s *stubSource) MetricsSnapshot() studyguard.MetricsSnapshot {
	return studyguard.MetricsSnapshot{Counters: s.counters}
}

func (s *stubSource) AuditDropped() uint64 {
	return s.dropped
}

func TestCollectorExposesAllCounters(t *testing.T) {
	source := &stubSource{
		counters: map[studyguard.MetricID]uint64{
			studyguard.MetricLoginSuccess:  3,
			studyguard.MetricRotateSuccess: 7,
		},
		dropped: 2,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollectorFromSource(source))

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	values := make(map[string]float64, len(families))
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			values[fam.GetName()] = metric.GetCounter().GetValue()
		}
	}

	// Every defined counter appears, even at zero.
	for _, def := range studyguard.MetricDefs {
		if _, ok := values[def.Name]; !ok {
			t.Fatalf("metric %q missing from exposition", def.Name)
		}
	}

	if values["studyguard_login_success_total"] != 3 {
		t.Fatalf("login counter = %v, want 3", values["studyguard_login_success_total"])
	}
	if values["studyguard_rotate_success_total"] != 7 {
		t.Fatalf("rotate counter = %v, want 7", values["studyguard_rotate_success_total"])
	}
	if values["studyguard_rotate_failure_total"] != 0 {
		t.Fatalf("untouched counter = %v, want 0", values["studyguard_rotate_failure_total"])
	}
	if values["studyguard_audit_dropped_total"] != 2 {
		t.Fatalf("dropped counter = %v, want 2", values["studyguard_audit_dropped_total"])
	}
}

func TestHandlerServesTextExposition(t *testing.T) {
	source := &stubSource{
		counters: map[studyguard.MetricID]uint64{
			studyguard.MetricRefreshIssued: 1,
		},
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollectorFromSource(source))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "studyguard_refresh_issued_total 1") {
		t.Fatalf("exposition missing counter line:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE studyguard_refresh_issued_total counter") {
		t.Fatalf("exposition missing TYPE line:\n%s", body)
	}
}
