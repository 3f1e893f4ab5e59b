// Package tracing wraps the OpenTelemetry tracer this module uses to
// emit one span per replica attempt, nested under one span per logical
// request, so a trace backend can show exactly which replicas a
// Parallel or Forking strategy raced against each other.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "clusterhttp"

// StartRequest opens the span for one logical request.
func StartRequest(ctx context.Context, method, url string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "clusterhttp.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
}

// StartAttempt opens the span for one replica attempt, nested under
// whatever span ctx carries.
func StartAttempt(ctx context.Context, replica string, attemptIndex int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "clusterhttp.attempt",
		trace.WithAttributes(
			attribute.String("clusterhttp.replica", replica),
			attribute.Int("clusterhttp.attempt_index", attemptIndex),
		),
	)
}

// EndAttempt closes span, recording statusCode and verdict as attributes
// and marking the span as errored when err is non-nil.
func EndAttempt(span trace.Span, statusCode int, verdict string, err error) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.String("clusterhttp.verdict", verdict),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// EndRequest closes the logical-request span, recording its final status.
func EndRequest(span trace.Span, status string) {
	span.SetAttributes(attribute.String("clusterhttp.status", status))
	span.End()
}
