package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/store"
)

type fakeSource struct {
	snapshot authclient.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() authclient.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters: map[authclient.MetricID]uint64{
				authclient.MetricLoginSuccess:  4,
				authclient.MetricLogoutShared:  2,
				authclient.MetricLoginRejected: 1,
			},
			Histograms: map[authclient.MetricID][]uint64{
				authclient.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 3,
	})

	out := exp.Render()
	for _, want := range []string{
		"authclient_login_success_total 4",
		"authclient_logout_shared_total 2",
		"authclient_login_rejected_total 1",
		"authclient_csrf_bootstrap_success_total 0",
		`authclient_request_latency_seconds_bucket{le="0.005"} 1`,
		`authclient_request_latency_seconds_bucket{le="+Inf"} 36`,
		"authclient_request_latency_seconds_count 36",
		"# TYPE authclient_request_latency_seconds histogram",
		"authclient_audit_dropped_total 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderOmitsHistogramWhenLatencyDisabled(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{authclient.MetricLoginSuccess: 1},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})
	if strings.Contains(exp.Render(), "request_latency") {
		t.Fatal("histogram must be omitted when the snapshot has none")
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{authclient.MetricLoginSuccess: 1},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExporterReadsRealClient(t *testing.T) {
	c, err := authclient.New().WithStore(store.NewMemoryStore()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer c.Close()

	if out := NewExporter(c).Render(); !strings.Contains(out, "authclient_login_success_total 0") {
		t.Fatalf("expected zeroed counters from a fresh client, got:\n%s", out)
	}
}
