package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/esports-match-sync/internal/platform/querybuilder"
)

const jobDispatchUpsertSuffix = `ON CONFLICT (dispatch_id)
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    trigger = EXCLUDED.trigger,
    league_slug = EXCLUDED.league_slug,
    status = EXCLUDED.status,
    match_count = EXCLUDED.match_count,
    event_count = EXCLUDED.event_count,
    sent_at = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_at
        ELSE COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at)
    END,
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    sent_trace_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_trace_id
        ELSE job_dispatches.sent_trace_id
    END,
    sent_span_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_span_id
        ELSE job_dispatches.sent_span_id
    END,
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE job_dispatches.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE job_dispatches.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE job_dispatches.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE job_dispatches.failed_span_id
    END,
    updated_at = NOW()`

const jobDispatchSelectColumns = `dispatch_id, job_name, trigger, league_slug, status, match_count, event_count, last_error, updated_at,
    COALESCE(failed_trace_id, completed_trace_id, sent_trace_id) AS trace_id,
    COALESCE(failed_span_id, completed_span_id, sent_span_id) AS span_id`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	model, err := toJobDispatchModel(event)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModels("job_dispatches", []jobDispatchInsertModel{model}, jobDispatchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return dbError(fmt.Sprintf("upsert job dispatch dispatch_id=%s status=%s", model.DispatchID, event.Status), err)
	}

	return nil
}

func (r *JobDispatchRepository) ListRecent(ctx context.Context, limit int) ([]jobscheduler.DispatchEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := qb.Select(jobDispatchSelectColumns).From("job_dispatches").
		OrderBy("updated_at DESC", "dispatch_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select job dispatches query: %w", err)
	}

	var rows []jobDispatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError("select job dispatches", err)
	}

	out := make([]jobscheduler.DispatchEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, jobscheduler.DispatchEvent{
			DispatchID:   row.DispatchID,
			JobName:      row.JobName,
			Trigger:      row.Trigger,
			LeagueSlug:   row.LeagueSlug,
			Status:       jobscheduler.DispatchStatus(row.Status),
			MatchCount:   row.MatchCount,
			EventCount:   row.EventCount,
			ErrorMessage: nullString(row.LastError),
			OccurredAt:   row.UpdatedAt.UTC(),
			TraceID:      nullString(row.TraceID),
			SpanID:       nullString(row.SpanID),
		})
	}
	return out, nil
}

func toJobDispatchModel(event jobscheduler.DispatchEvent) (jobDispatchInsertModel, error) {
	if err := event.Validate(); err != nil {
		return jobDispatchInsertModel{}, err
	}
	dispatchID := strings.TrimSpace(event.DispatchID)
	jobName := event.JobName
	trigger := strings.TrimSpace(event.Trigger)
	if trigger == "" {
		trigger = "unknown"
	}
	leagueSlug := strings.TrimSpace(event.LeagueSlug)
	if leagueSlug == "" {
		leagueSlug = "all"
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    jobName,
		Trigger:    trigger,
		LeagueSlug: leagueSlug,
		Status:     string(event.Status),
		MatchCount: event.MatchCount,
		EventCount: event.EventCount,
		LastError:  optionalString(event.ErrorMessage),
	}

	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
	default:
		return jobDispatchInsertModel{}, fmt.Errorf("unknown dispatch status %q", event.Status)
	}
	return model, nil
}
