package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var handlerTracer = otel.Tracer("github.com/riskibarqy/esports-match-sync/internal/interfaces/httpapi")

// startHandlerSpan opens a child span under the otelhttp request span. Requests the
// tracing middleware filtered out (health checks) carry no parent and get a no-op span.
func startHandlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}

	attrs := make([]attribute.KeyValue, 0, 3)
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	if slug := r.PathValue("leagueSlug"); slug != "" {
		attrs = append(attrs, attribute.String("match.league_slug", slug))
	}
	if id := r.PathValue("matchID"); id != "" {
		attrs = append(attrs, attribute.String("match.id", id))
	}
	return handlerTracer.Start(ctx, handlerSpanName(op), trace.WithAttributes(attrs...))
}

func handlerSpanName(op string) string {
	return handlerSpanPrefix + op
}

// failSpan marks the span as errored. Client errors are recorded but keep an unset status.
func failSpan(span trace.Span, err error, httpStatus int) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.Int("http.response.status_code", httpStatus))
	if httpStatus >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
	}
}
