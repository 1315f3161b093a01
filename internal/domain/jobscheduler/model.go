// Package jobscheduler models the dispatch log: one row per sync run, moved from
// sent to completed or failed as the run progresses.
package jobscheduler

import (
	"fmt"
	"strings"
	"time"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

func (s DispatchStatus) Valid() bool {
	switch s {
	case StatusSent, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the run has finished, successfully or not.
func (s DispatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

const (
	JobSyncFull = "sync-full"
	JobSyncLive = "sync-live"
)

// DispatchEvent records one state of a sync job run for a league. An empty
// LeagueSlug means the run covered every configured league.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	Trigger      string
	LeagueSlug   string
	Status       DispatchStatus
	MatchCount   int
	EventCount   int
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

func (e DispatchEvent) Validate() error {
	if strings.TrimSpace(e.DispatchID) == "" {
		return fmt.Errorf("dispatch id is required")
	}
	if e.JobName != JobSyncFull && e.JobName != JobSyncLive {
		return fmt.Errorf("unknown job name %q", e.JobName)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("unknown dispatch status %q", e.Status)
	}
	return nil
}

// Supersedes reports whether e should replace prev for the same dispatch. Events
// arriving out of order never roll a dispatch back to an earlier state.
func (e DispatchEvent) Supersedes(prev DispatchEvent) bool {
	if e.OccurredAt.Before(prev.OccurredAt) {
		return false
	}
	return !(prev.Status.Terminal() && e.Status == StatusSent && e.OccurredAt.Equal(prev.OccurredAt))
}
