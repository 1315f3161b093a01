package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
)

func TestJobDispatchRepository_UpsertKeepsLatestState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewJobDispatchRepository()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_ = repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{DispatchID: "d1", JobName: jobscheduler.JobSyncFull, Status: jobscheduler.StatusSent, OccurredAt: base})
	_ = repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{DispatchID: "d2", JobName: jobscheduler.JobSyncLive, Status: jobscheduler.StatusSent, OccurredAt: base.Add(time.Second)})
	_ = repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{DispatchID: "d1", JobName: jobscheduler.JobSyncFull, Status: jobscheduler.StatusFailed, OccurredAt: base.Add(2 * time.Second)})

	items, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("unexpected count: got=%d want=2", len(items))
	}
	if items[0].DispatchID != "d1" || items[0].Status != jobscheduler.StatusFailed {
		t.Fatalf("unexpected newest event: %+v", items[0])
	}

	limited, _ := repo.ListRecent(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("unexpected limited count: %d", len(limited))
	}
	if err := repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{}); err == nil {
		t.Fatalf("expected error for empty dispatch id")
	}

	// a stale "sent" delivered after the failure is ignored
	_ = repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{DispatchID: "d1", JobName: jobscheduler.JobSyncFull, Status: jobscheduler.StatusSent, OccurredAt: base})
	items, _ = repo.ListRecent(ctx, 10)
	if items[0].DispatchID != "d1" || items[0].Status != jobscheduler.StatusFailed {
		t.Fatalf("stale event overwrote dispatch: %+v", items[0])
	}
}
