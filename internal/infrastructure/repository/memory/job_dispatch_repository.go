package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
)

const maxDispatchEvents = 1000

// JobDispatchRepository keeps the latest state of each dispatch in memory.
type JobDispatchRepository struct {
	mu     sync.Mutex
	events map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{events: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	dispatchID := strings.TrimSpace(event.DispatchID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.events[dispatchID]; ok && !event.Supersedes(prev) {
		return nil
	}
	r.events[dispatchID] = event
	if len(r.events) > maxDispatchEvents {
		r.evictOldestLocked()
	}
	return nil
}

func (r *JobDispatchRepository) ListRecent(_ context.Context, limit int) ([]jobscheduler.DispatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]jobscheduler.DispatchEvent, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event)
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobDispatchRepository) evictOldestLocked() {
	var oldestID string
	for id, event := range r.events {
		if oldestID == "" || event.OccurredAt.Before(r.events[oldestID].OccurredAt) {
			oldestID = id
		}
	}
	delete(r.events, oldestID)
}

func sortNewestFirst(items []jobscheduler.DispatchEvent) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].OccurredAt.After(items[j].OccurredAt)
		}
		return items[i].DispatchID < items[j].DispatchID
	})
}
