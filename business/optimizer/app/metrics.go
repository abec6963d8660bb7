package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	"github.com/fd1az/optimal-input-radar/internal/apm"
)

const (
	tracerName = "github.com/fd1az/optimal-input-radar/business/optimizer/app"
	meterName  = "github.com/fd1az/optimal-input-radar/business/optimizer/app"
)

// Metrics holds the orchestrator's OTEL instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	tracer      apm.Tracer
	scans       metric.Int64Counter
	duration    metric.Float64Histogram
	evaluations metric.Int64Counter
}

// NewMetrics creates the instruments on the global providers.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{tracer: apm.NewTracer(tracerName)}

	var err error
	m.scans, err = meter.Int64Counter(
		"optimizer_scans_total",
		metric.WithDescription("Scans by surface and outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.duration, err = meter.Float64Histogram(
		"optimizer_scan_duration_seconds",
		metric.WithDescription("Wall time of a scan"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.evaluations, err = meter.Int64Counter(
		"optimizer_coarse_evaluations_total",
		metric.WithDescription("Coarse profit evaluations"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) startSpan(ctx context.Context, surface string, rng domain.ScanRange) (context.Context, apm.Span) {
	if m == nil {
		return ctx, apm.NewTracer(tracerName).SpanFromContext(ctx)
	}
	return m.tracer.StartSpanFromContext(ctx, "optimizer.scan",
		trace.WithAttributes(
			attribute.String("surface", surface),
			attribute.Float64("range.min", rng.Min),
			attribute.Float64("range.max", rng.Max),
		),
	)
}

func (m *Metrics) recordScan(ctx context.Context, surface, outcome string, took time.Duration, points int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("surface", surface),
		attribute.String("outcome", outcome),
	)
	m.scans.Add(ctx, 1, attrs)
	m.duration.Record(ctx, took.Seconds(), attrs)
	m.evaluations.Add(ctx, int64(points), metric.WithAttributes(attribute.String("surface", surface)))
}
