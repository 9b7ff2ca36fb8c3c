package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gwerrors "github.com/gruntwork-io/gruntwork-cli/errors"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/metrics/export/otel"
	"github.com/MrEthical07/authclient/metrics/export/prometheus"
)

const (
	formatPrometheus = "prometheus"
	formatOTel       = "otel"
)

func renderMetrics(ctx context.Context, client *authclient.Client, format string) (string, error) {
	switch format {
	case "", formatPrometheus:
		return prometheus.NewExporter(client).Render(), nil
	case formatOTel:
		return renderOTel(ctx, client)
	default:
		return "", gwerrors.WithStackTrace(fmt.Errorf("unknown metrics format %q", format))
	}
}

// renderOTel collects the client's instruments through an OTel SDK reader and
// prints one "name value" line per data point.
func renderOTel(ctx context.Context, client *authclient.Client) (string, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	exp, err := otel.NewOTelExporter(provider.Meter("authclient"), client)
	if err != nil {
		return "", gwerrors.WithStackTrace(err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return "", gwerrors.WithStackTrace(err)
	}

	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s %d", m.Name, dp.Value))
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s %d", m.Name, dp.Value))
				}
			}
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}
