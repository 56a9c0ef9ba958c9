package metrics

import (
	"context"
	"time"

	"github.com/textileio/attestation-core/attestation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// AttrOK is a metric tag to indicate a successful operation.
	AttrOK = attribute.Key("status").String("ok")
	// AttrError is a metric tag to indicate a failed operation.
	AttrError = attribute.Key("status").String("error")
)

// AttrKind tags a metric with the attestation error kind of err, "none" when nil.
func AttrKind(err error) attribute.KeyValue {
	return attribute.Key("kind").String(attestation.KindOf(err))
}

// AttrStage tags a metric with a processing stage name.
func AttrStage(stage string) attribute.KeyValue {
	return attribute.Key("stage").String(stage)
}

// MetricIncrCounter increments m by 1 tagged with AttrOK or AttrError depending
// on err, plus the error kind. Meant to be deferred.
func MetricIncrCounter(ctx context.Context, err error, m metric.Int64Counter, labels ...attribute.KeyValue) {
	attr := AttrOK
	if err != nil {
		attr = AttrError
	}
	m.Add(ctx, 1, append(labels, attr, AttrKind(err))...)
}

// MetricRecordMillis records the time elapsed since start in milliseconds.
func MetricRecordMillis(ctx context.Context, start time.Time, m metric.Int64Histogram, labels ...attribute.KeyValue) {
	m.Record(ctx, time.Since(start).Milliseconds(), labels...)
}
