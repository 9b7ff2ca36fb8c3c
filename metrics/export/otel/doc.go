// Package otel provides OpenTelemetry metric bindings for authclient counters and
// the request latency histogram.
//
// [NewOTelExporter] registers an Int64ObservableCounter for each client counter and
// one Int64ObservableGauge per latency bucket. A single callback reads
// [authclient.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
