package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/store"
)

func newMetricsClient(t *testing.T) *authclient.Client {
	t.Helper()
	srv := newDevBackend(t)
	cfg := authclient.DefaultConfig()
	cfg.BaseURL = srv.URL
	c, err := authclient.New().WithConfig(cfg).WithStore(store.NewMemoryStore()).Build()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.Bootstrap(context.Background()))
	return c
}

func TestRenderMetricsOTel(t *testing.T) {
	c := newMetricsClient(t)

	out, err := renderMetrics(context.Background(), c, formatOTel)
	require.NoError(t, err)
	assert.Contains(t, out, "authclient_csrf_bootstrap_success_total 1\n")
	assert.Contains(t, out, "authclient_login_success_total 0\n")
	assert.Contains(t, out, "authclient_audit_dropped_total 0\n")
}

func TestRenderMetricsPrometheusIsDefault(t *testing.T) {
	c := newMetricsClient(t)

	out, err := renderMetrics(context.Background(), c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "# TYPE authclient_csrf_bootstrap_success_total counter")
	assert.Contains(t, out, "authclient_csrf_bootstrap_success_total 1")
}

func TestRenderMetricsUnknownFormat(t *testing.T) {
	c := newMetricsClient(t)

	_, err := renderMetrics(context.Background(), c, "statsd")
	assert.Error(t, err)
}
