package internaldefs

import (
	"github.com/MrEthical07/authclient"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for events dropped by the audit dispatcher.
const AuditDroppedName = "authclient_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

var CounterDefs = []CounterDef{
	{ID: authclient.MetricBootstrapSuccess, Name: "authclient_csrf_bootstrap_success_total", Help: "CSRF bootstrap requests answered with 200."},
	{ID: authclient.MetricBootstrapRejected, Name: "authclient_csrf_bootstrap_rejected_total", Help: "CSRF bootstrap requests answered with a non-200 status."},
	{ID: authclient.MetricBootstrapUnavailable, Name: "authclient_csrf_bootstrap_unavailable_total", Help: "CSRF bootstrap requests that received no response."},
	{ID: authclient.MetricLoginSuccess, Name: "authclient_login_success_total", Help: "Logins that moved the session to logged in."},
	{ID: authclient.MetricLoginRejected, Name: "authclient_login_rejected_total", Help: "Logins answered with a non-200 status."},
	{ID: authclient.MetricLoginUnavailable, Name: "authclient_login_unavailable_total", Help: "Logins that received no response."},
	{ID: authclient.MetricLoginSuppressed, Name: "authclient_login_suppressed_total", Help: "Login calls refused locally without a request."},
	{ID: authclient.MetricLogoutSuccess, Name: "authclient_logout_success_total", Help: "Logouts answered with 200."},
	{ID: authclient.MetricLogoutRejected, Name: "authclient_logout_rejected_total", Help: "Logouts answered with a non-200 status."},
	{ID: authclient.MetricLogoutUnavailable, Name: "authclient_logout_unavailable_total", Help: "Logouts that received no response."},
	{ID: authclient.MetricLogoutShared, Name: "authclient_logout_shared_total", Help: "Logout callers that shared an in-flight request."},
	{ID: authclient.MetricStateChange, Name: "authclient_state_change_total", Help: "Session state transitions."},
}

var HistogramDefs = []HistogramDef{
	{ID: authclient.MetricRequestLatency, Name: "authclient_request_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramBounds are the Prometheus "le" labels, in bucket order.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are name-safe forms of HistogramBounds for OTel gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw snapshot buckets to the exported width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, n := range raw {
		running += n
		out[i] = running
	}
	return out
}
