package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
	jobschedulermock "github.com/riskibarqy/esports-match-sync/internal/mocks/domain/jobscheduler"
	"github.com/stretchr/testify/mock"
)

func TestDedupKey_UsesQueueSafeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.February, 25, 4, 25, 42, 0, time.UTC)
	got := dedupKey("sync-live", "idn:liga/1 2025", at, 5*time.Minute)

	if strings.Contains(got, ":") {
		t.Fatalf("dedup key must not contain colon, got=%q", got)
	}

	want := "sync-live-idn-liga-1-2025-20260225T042500Z"
	if got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
}

func TestSanitizeDedupSegment_EmptyFallback(t *testing.T) {
	t.Parallel()

	if got := sanitizeDedupSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q want=%q", got, "unknown")
	}
}

type stubLeagueSyncer struct {
	mu      sync.Mutex
	fail    map[string]error
	panicOn string
	full    []string
	live    []string
}

func (s *stubLeagueSyncer) SyncFull(_ context.Context, leagueSlug string) (LeagueSyncReport, error) {
	s.mu.Lock()
	s.full = append(s.full, leagueSlug)
	s.mu.Unlock()
	return s.result(leagueSlug, SyncModeFull)
}

func (s *stubLeagueSyncer) SyncLive(_ context.Context, leagueSlug string) (LeagueSyncReport, error) {
	s.mu.Lock()
	s.live = append(s.live, leagueSlug)
	s.mu.Unlock()
	return s.result(leagueSlug, SyncModeLive)
}

func (s *stubLeagueSyncer) result(leagueSlug, mode string) (LeagueSyncReport, error) {
	if leagueSlug == s.panicOn {
		panic("normalizer exploded")
	}
	if err := s.fail[leagueSlug]; err != nil {
		return LeagueSyncReport{League: leagueSlug, Mode: mode}, err
	}
	return LeagueSyncReport{League: leagueSlug, Mode: mode, Matches: 4, Events: 1}, nil
}

func testCatalog() *LeagueCatalog {
	return NewLeagueCatalog(map[string]string{
		"cblol-brazil": "98767991332355509",
		"lta_sul":      "113475181634818701",
		"lta_norte":    "113475149040947852",
	}, nil)
}

func TestJobOrchestratorService_FailedLeagueDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	remoteErr := errors.Join(ErrRemoteFetch, errors.New("status 503"))
	syncer := &stubLeagueSyncer{fail: map[string]error{"lta_norte": remoteErr}}
	service := NewJobOrchestratorService(testCatalog(), syncer, nil, JobOrchestratorConfig{}, nil)

	result, err := service.RunFullSync(context.Background(), JobSyncInput{Trigger: TriggerScheduler})
	if err == nil {
		t.Fatalf("expected joined league error")
	}
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("expected joined error to keep ErrRemoteFetch, got %v", err)
	}
	if len(syncer.full) != 3 {
		t.Fatalf("expected every league to be attempted, got=%v", syncer.full)
	}
	if result.LeagueCount != 3 || result.FailedCount != 1 {
		t.Fatalf("unexpected result counts: %+v", result)
	}
	if result.Leagues[1].League != "lta_norte" || result.Leagues[1].ErrorMessage == "" {
		t.Fatalf("unexpected failed league report: %+v", result.Leagues[1])
	}
	if result.Leagues[0].Matches != 4 {
		t.Fatalf("unexpected success report: %+v", result.Leagues[0])
	}
}

func TestJobOrchestratorService_RecoversLeaguePanic(t *testing.T) {
	t.Parallel()

	syncer := &stubLeagueSyncer{panicOn: "cblol-brazil"}
	service := NewJobOrchestratorService(testCatalog(), syncer, nil, JobOrchestratorConfig{Workers: 3}, nil)

	result, err := service.RunLiveSync(context.Background(), JobSyncInput{})
	if err == nil || !strings.Contains(err.Error(), "panic during league sync") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}
	if result.FailedCount != 1 || len(syncer.live) != 3 {
		t.Fatalf("unexpected result: %+v live=%v", result, syncer.live)
	}
}

func TestJobOrchestratorService_SingleLeagueAndUnknownLeague(t *testing.T) {
	t.Parallel()

	syncer := &stubLeagueSyncer{}
	service := NewJobOrchestratorService(testCatalog(), syncer, nil, JobOrchestratorConfig{}, nil)

	result, err := service.RunFullSync(context.Background(), JobSyncInput{LeagueSlug: "lta_sul"})
	if err != nil {
		t.Fatalf("run full sync: %v", err)
	}
	if result.LeagueCount != 1 || len(syncer.full) != 1 || syncer.full[0] != "lta_sul" {
		t.Fatalf("unexpected single league run: %+v full=%v", result, syncer.full)
	}

	if _, err := service.RunFullSync(context.Background(), JobSyncInput{LeagueSlug: "lck"}); !errors.Is(err, ErrUnsupportedLeague) {
		t.Fatalf("expected ErrUnsupportedLeague, got %v", err)
	}
}

func TestJobOrchestratorService_RecordsDispatchEvents(t *testing.T) {
	t.Parallel()

	dispatchRepo := jobschedulermock.NewRepository(t)
	syncer := &stubLeagueSyncer{fail: map[string]error{"lta_sul": errors.New("boom")}}
	catalog := NewLeagueCatalog(map[string]string{"cblol-brazil": "1", "lta_sul": "2"}, nil)
	service := NewJobOrchestratorService(catalog, syncer, dispatchRepo, JobOrchestratorConfig{LiveBucket: time.Minute}, nil)
	service.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 15, 0, time.UTC) }

	var mu sync.Mutex
	recorded := make([]jobscheduler.DispatchEvent, 0, 4)
	dispatchRepo.
		On("UpsertEvent", mock.Anything, mock.AnythingOfType("jobscheduler.DispatchEvent")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			recorded = append(recorded, args.Get(1).(jobscheduler.DispatchEvent))
		}).
		Return(nil).
		Times(4)

	result, err := service.RunLiveSync(context.Background(), JobSyncInput{Trigger: TriggerScheduler})
	if err == nil {
		t.Fatalf("expected league failure")
	}
	if result.DispatchID != "sync-live-all-20260301T123000Z" {
		t.Fatalf("unexpected dispatch id: %s", result.DispatchID)
	}

	statuses := map[string]jobscheduler.DispatchStatus{}
	for _, event := range recorded {
		if event.JobName != jobscheduler.JobSyncLive || event.Trigger != TriggerScheduler {
			t.Fatalf("unexpected dispatch event: %+v", event)
		}
		statuses[event.DispatchID] = event.Status
	}
	if statuses["sync-live-all-20260301T123000Z-cblol-brazil"] != jobscheduler.StatusCompleted {
		t.Fatalf("unexpected cblol status: %v", statuses)
	}
	if statuses["sync-live-all-20260301T123000Z-lta_sul"] != jobscheduler.StatusFailed {
		t.Fatalf("unexpected lta_sul status: %v", statuses)
	}
}
