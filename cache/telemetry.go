package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this library to OpenTelemetry.
const instrumentationName = "github.com/kengibson1111/go-readthrough-cache"

// instruments bundles the tracer and meters for cache operations. It draws
// from the global providers, so without an SDK installed by the application
// every call here is a no-op.
type instruments struct {
	tracer         trace.Tracer
	hits           metric.Int64Counter
	misses         metric.Int64Counter
	errors         metric.Int64Counter
	invalidations  metric.Int64Counter
	lookupDuration metric.Float64Histogram
}

// newInstruments creates the telemetry instruments for one cache instance.
// Instrument creation errors go to the global error handler; the returned
// instruments are usable either way.
func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)

	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Lookups satisfied from the cache"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Lookups that fell through to the producer"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	errCount, err := meter.Int64Counter(
		"cache.errors",
		metric.WithDescription("Cache-side failures absorbed by the fail-open policy"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	invalidations, err := meter.Int64Counter(
		"cache.invalidations",
		metric.WithDescription("Entries removed by prefix-scoped invalidation"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	lookupDuration, err := meter.Float64Histogram(
		"cache.lookup.duration_ms",
		metric.WithDescription("Backend lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &instruments{
		tracer:         otel.Tracer(instrumentationName),
		hits:           hits,
		misses:         misses,
		errors:         errCount,
		invalidations:  invalidations,
		lookupDuration: lookupDuration,
	}
}

// startSpan opens an internal span for one cache operation.
func (in *instruments) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// endSpan closes a span, recording the error if one occurred.
func (in *instruments) endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// recordLookup counts one lookup outcome and its backend round-trip time.
func (in *instruments) recordLookup(ctx context.Context, operation string, hit bool, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("cache.operation", operation),
		attribute.Bool("cache.hit", hit),
	)

	if hit {
		in.hits.Add(ctx, 1, opt)
	} else {
		in.misses.Add(ctx, 1, opt)
	}
	in.lookupDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// recordError counts one absorbed cache-side failure by stage.
func (in *instruments) recordError(ctx context.Context, operation, stage string) {
	in.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.operation", operation),
		attribute.String("cache.stage", stage),
	))
}

// recordInvalidation counts entries removed under one prefix.
func (in *instruments) recordInvalidation(ctx context.Context, prefix string, removed int64) {
	if removed <= 0 {
		return
	}
	in.invalidations.Add(ctx, removed, metric.WithAttributes(
		attribute.String("cache.prefix", prefix),
	))
}
