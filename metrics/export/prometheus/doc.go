// Package prometheus renders authclient metrics in the Prometheus text exposition
// format.
//
// [NewExporter] reads [authclient.Client.MetricsSnapshot] on every scrape. Counter
// names are prefixed authclient_ and end in _total; the only histogram is
// authclient_request_latency_seconds. No global registry is touched; callers mount
// [Exporter.Handler] or write [Exporter.Render] wherever they like.
package prometheus
