package attestor

import (
	"context"
	"time"

	"github.com/textileio/attestation-core/metrics"
	"go.opentelemetry.io/otel/metric"
)

var prefix = "attestd"

type metricsCollector interface {
	onRequest(ctx context.Context, stage Stage, start time.Time, err error)
}

type otelMetricsCollector struct {
	metricRequests              metric.Int64Counter
	metricStageErrors           metric.Int64Counter
	metricRequestDurationMillis metric.Int64Histogram
}

func (c *otelMetricsCollector) onRequest(ctx context.Context, stage Stage, start time.Time, err error) {
	metrics.MetricIncrCounter(ctx, err, c.metricRequests)
	metrics.MetricRecordMillis(ctx, start, c.metricRequestDurationMillis)
	if err != nil {
		c.metricStageErrors.Add(ctx, 1, metrics.AttrStage(stage.String()))
	}
}

func (a *Attestor) initMetrics(meter metric.MeterMust) {
	a.metrics = &otelMetricsCollector{
		metricRequests:              meter.NewInt64Counter(prefix + ".requests_total"),
		metricStageErrors:           meter.NewInt64Counter(prefix + ".stage_errors_total"),
		metricRequestDurationMillis: meter.NewInt64Histogram(prefix + ".request_duration_millis"),
	}
}
