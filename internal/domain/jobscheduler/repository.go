package jobscheduler

import "context"

// Repository persists the latest state of each dispatch.
type Repository interface {
	// UpsertEvent stores event keyed by DispatchID.
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	// ListRecent returns dispatches newest first; limit <= 0 means no limit.
	ListRecent(ctx context.Context, limit int) ([]DispatchEvent, error)
}
