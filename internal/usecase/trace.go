package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("github.com/riskibarqy/esports-match-sync/internal/usecase")

// startUsecaseSpan opens a child of the span in ctx. Without a parent (cron ticks before
// the orchestrator span, tests) it hands back the context's no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if parent := trace.SpanFromContext(ctx); !parent.SpanContext().IsValid() || name == "" {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func leagueAttr(slug string) attribute.KeyValue {
	return attribute.String("match.league_slug", slug)
}

// recordSyncReport copies a league sync outcome onto its span.
func recordSyncReport(span trace.Span, report LeagueSyncReport, err error) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int("sync.fetched", report.Fetched),
		attribute.Int("sync.matches", report.Matches),
		attribute.Int("sync.events", report.Events),
		attribute.Bool("sync.skipped", report.Skipped),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func traceMetaFromContext(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
