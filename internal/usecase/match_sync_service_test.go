package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	cacherepo "github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/esports-match-sync/internal/mocks/domain/match"
	"github.com/stretchr/testify/mock"
)

const testLeague = "cblol-brazil"

type syncFixture struct {
	schedule *stubScheduleProvider
	vods     *stubVODProvider
	store    *stubMatchStore
	sink     *recordingSink
	service  *MatchSyncService
}

func newSyncFixture(policy LiveSyncPolicy) *syncFixture {
	f := &syncFixture{
		schedule: &stubScheduleProvider{},
		vods:     &stubVODProvider{},
		store:    newStubMatchStore(),
		sink:     &recordingSink{},
	}
	catalog := NewLeagueCatalog(map[string]string{testLeague: "98767991332355509"}, map[string]string{testLeague: "t-1"})
	f.service = NewMatchSyncService(
		catalog,
		f.schedule,
		NewVODEnricher(f.vods, VODEnricherConfig{FallbackEnabled: true}, nil),
		NewMatchNormalizer(MatchNormalizerConfig{}, nil),
		nil,
		f.store,
		NewStateChangeNotifier(f.sink, nil, nil),
		MatchSyncConfig{LivePolicy: policy},
		nil,
	)
	return f
}

func ieVsLev(state, aOutcome string, aWins int, bOutcome string, bWins int) ExternalEvent {
	return externalMatchEvent("m-ie-lev", "2025-05-10T00:00:00Z", state, "Week 3",
		teamWithResult("IE", "Isurus Estral", aOutcome, aWins),
		teamWithResult("LEV", "Leviatán", bOutcome, bWins),
	)
}

func loudVsPain(id, state string) ExternalEvent {
	return externalMatchEvent(id, "2025-06-14T18:00:00Z", state, "Week 2",
		teamWithResult("LOUD", "LOUD", "", 0),
		teamWithResult("PAIN", "paiN Gaming", "", 0),
	)
}

func TestMatchSyncService_SyncFullEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncRefetch)

	f.schedule.set("98767991332355509", []ExternalEvent{ieVsLev("inProgress", "", 2, "", 1)})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	f.schedule.set("98767991332355509", []ExternalEvent{ieVsLev("completed", "win", 3, "loss", 1)})
	report, err := f.service.SyncFull(ctx, testLeague)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Matches != 1 || report.Events != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	stored, _, _ := f.store.GetByID(ctx, "m-ie-lev")
	if stored.State != match.StateCompleted || stored.Teams[0].Result.Outcome != match.OutcomeWin {
		t.Fatalf("unexpected stored match: %+v", stored)
	}
	if stored.League.Slug != testLeague {
		t.Fatalf("unexpected league slug: %s", stored.League.Slug)
	}

	published := f.sink.published()
	if len(published) != 1 {
		t.Fatalf("unexpected published count: got=%d want=1", len(published))
	}
	if published[0].Title != "IE venceu LEV" || published[0].Body != "IE ganhou por 3-1 contra LEV" {
		t.Fatalf("unexpected notification: %+v", published[0])
	}
	if published[0].Category != notification.CategoryResult {
		t.Fatalf("unexpected category: %s", published[0].Category)
	}
}

func TestMatchSyncService_SyncFullIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncRefetch)
	f.schedule.set("98767991332355509", []ExternalEvent{
		ieVsLev("completed", "win", 3, "loss", 1),
		loudVsPain("m-loud-pain", "unstarted"),
	})

	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := f.store.ListByLeague(ctx, testLeague)
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second, _ := f.store.ListByLeague(ctx, testLeague)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("snapshot changed between identical syncs:\nfirst=%+v\nsecond=%+v", first, second)
	}
	if len(f.sink.published()) != 0 {
		t.Fatalf("expected no notifications for unchanged payload")
	}
}

func TestMatchSyncService_SyncFullDropsStaleMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncRefetch)
	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "unstarted"), loudVsPain("m-2", "unstarted")})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-2", "unstarted")})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if _, exists, _ := f.store.GetByID(ctx, "m-1"); exists {
		t.Fatalf("expected stale match m-1 to be dropped")
	}
	items, _ := f.store.ListByLeague(ctx, testLeague)
	if len(items) != 1 || items[0].ID != "m-2" {
		t.Fatalf("unexpected snapshot: %+v", items)
	}
}

func TestMatchSyncService_FetchErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncRefetch)
	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "unstarted")})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	f.schedule.err = errors.New("dial tcp: timeout")
	_, err := f.service.SyncFull(ctx, testLeague)
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("expected ErrRemoteFetch, got %v", err)
	}
	items, _ := f.store.ListByLeague(ctx, testLeague)
	if len(items) != 1 {
		t.Fatalf("expected last good snapshot to be kept, got=%+v", items)
	}
}

func TestMatchSyncService_UnsupportedLeague(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(LiveSyncRefetch)
	if _, err := f.service.SyncFull(context.Background(), "lck"); !errors.Is(err, ErrUnsupportedLeague) {
		t.Fatalf("expected ErrUnsupportedLeague, got %v", err)
	}
	if f.schedule.calls != 0 {
		t.Fatalf("expected no fetch for unsupported league")
	}
}

func TestMatchSyncService_PersistenceError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	schedule := &stubScheduleProvider{}
	schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "unstarted")})
	catalog := NewLeagueCatalog(map[string]string{testLeague: "98767991332355509"}, nil)
	service := NewMatchSyncService(catalog, schedule, nil, nil, nil, repo, nil, MatchSyncConfig{}, nil)

	repo.On("UpdateLeague", mock.Anything, testLeague, mock.AnythingOfType("match.LeagueUpdate")).
		Return(errors.New("redis: connection refused")).
		Once()

	_, err := service.SyncFull(ctx, testLeague)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestMatchSyncService_SyncLiveRefetchMergesAndCarriesVOD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncRefetch)
	f.vods.events = []ExternalVODEvent{{MatchID: "m-live", Games: []ExternalGame{{VODs: []ExternalVOD{{Parameter: "vid-1"}}}}}}
	f.schedule.set("98767991332355509", []ExternalEvent{
		loudVsPain("m-live", "inProgress"),
		loudVsPain("m-next", "unstarted"),
	})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("full sync: %v", err)
	}
	vodCalls := f.vods.calls

	completed := loudVsPain("m-live", "completed")
	completed.Match.Teams[0].Result = &ExternalTeamResult{Outcome: "win", GameWins: 3}
	completed.Match.Teams[1].Result = &ExternalTeamResult{Outcome: "loss", GameWins: 2}
	renamed := loudVsPain("m-next", "unstarted")
	renamed.BlockName = "Week 9"
	f.schedule.set("98767991332355509", []ExternalEvent{completed, renamed, loudVsPain("m-new-live", "inProgress")})

	report, err := f.service.SyncLive(ctx, testLeague)
	if err != nil {
		t.Fatalf("live sync: %v", err)
	}
	if f.vods.calls != vodCalls {
		t.Fatalf("live sync must not hit the vod endpoint")
	}
	if report.Events != 1 {
		t.Fatalf("unexpected event count: %+v", report)
	}

	items, _ := f.store.ListByLeague(ctx, testLeague)
	if len(items) != 3 {
		t.Fatalf("unexpected snapshot size: got=%d want=3 (%+v)", len(items), items)
	}
	byID := match.IndexByID(items)
	live := byID["m-live"]
	if live.State != match.StateCompleted || live.VODURL != "https://www.youtube.com/watch?v=vid-1" || !live.HasVOD {
		t.Fatalf("unexpected refreshed match: %+v", live)
	}
	if byID["m-next"].BlockName != "Week 2" {
		t.Fatalf("live sync must not touch non-live matches, got block=%s", byID["m-next"].BlockName)
	}
	if byID["m-new-live"].State != match.StateInProgress {
		t.Fatalf("expected new live match to be added")
	}
}

func TestMatchSyncService_SyncLiveKnownLiveSkipsWithoutLiveMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncKnownLive)
	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "unstarted")})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("full sync: %v", err)
	}
	calls := f.schedule.calls

	report, err := f.service.SyncLive(ctx, testLeague)
	if err != nil {
		t.Fatalf("live sync: %v", err)
	}
	if !report.Skipped || f.schedule.calls != calls {
		t.Fatalf("expected skipped live sync without fetch, report=%+v calls=%d", report, f.schedule.calls)
	}
}

func TestMatchSyncService_SyncLiveKnownLiveIgnoresNewMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(LiveSyncKnownLive)
	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "inProgress")})
	if _, err := f.service.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("full sync: %v", err)
	}

	f.schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "completed"), loudVsPain("m-2", "inProgress")})
	if _, err := f.service.SyncLive(ctx, testLeague); err != nil {
		t.Fatalf("live sync: %v", err)
	}

	items, _ := f.store.ListByLeague(ctx, testLeague)
	if len(items) != 1 || items[0].State != match.StateCompleted {
		t.Fatalf("unexpected snapshot: %+v", items)
	}
}

// instanceOver builds a sync service the way a second process would: its own provider and its own
// read cache, sharing only the store.
func instanceOver(shared match.Repository) (*MatchSyncService, *stubScheduleProvider, *cacherepo.MatchRepository) {
	schedule := &stubScheduleProvider{}
	reads := cacherepo.NewMatchRepository(shared, time.Minute)
	catalog := NewLeagueCatalog(map[string]string{testLeague: "98767991332355509"}, nil)
	service := NewMatchSyncService(catalog, schedule, nil, nil, nil, shared, nil, MatchSyncConfig{LivePolicy: LiveSyncRefetch}, nil)
	service.InvalidateAfterWrite(reads)
	return service, schedule, reads
}

func TestMatchSyncService_InstancesSharingStoreNeverResurrectDroppedMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	shared := memory.NewMatchRepository(nil)
	a, scheduleA, readsA := instanceOver(shared)
	b, scheduleB, _ := instanceOver(shared)

	scheduleA.set("98767991332355509", []ExternalEvent{
		loudVsPain("m-old", "unstarted"),
		ieVsLev("inProgress", "", 2, "", 1),
	})
	if _, err := a.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("instance a full sync: %v", err)
	}
	if items, _ := readsA.ListByLeague(ctx, testLeague); len(items) != 2 {
		t.Fatalf("expected instance a cache to hold 2 matches, got=%d", len(items))
	}

	scheduleB.set("98767991332355509", []ExternalEvent{ieVsLev("completed", "win", 3, "loss", 1)})
	if _, err := b.SyncFull(ctx, testLeague); err != nil {
		t.Fatalf("instance b full sync: %v", err)
	}

	scheduleA.set("98767991332355509", []ExternalEvent{
		ieVsLev("completed", "win", 3, "loss", 1),
		loudVsPain("m-new", "inProgress"),
	})
	if _, err := a.SyncLive(ctx, testLeague); err != nil {
		t.Fatalf("instance a live sync: %v", err)
	}

	items, _ := shared.ListByLeague(ctx, testLeague)
	byID := match.IndexByID(items)
	if _, ok := byID["m-old"]; ok {
		t.Fatalf("dropped match m-old came back: %+v", items)
	}
	if got := byID["m-ie-lev"].State; got != match.StateCompleted {
		t.Fatalf("completed match reverted: state=%s", got)
	}
	if _, ok := byID["m-new"]; !ok || len(items) != 2 {
		t.Fatalf("unexpected snapshot: %+v", items)
	}
	cached, _ := readsA.ListByLeague(ctx, testLeague)
	if _, ok := match.IndexByID(cached)["m-new"]; !ok {
		t.Fatalf("expected instance a cache invalidated by its write, got=%+v", cached)
	}
}

func TestMatchSyncService_SyncLiveSkipsWhenNothingLive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	schedule := &stubScheduleProvider{}
	schedule.set("98767991332355509", []ExternalEvent{loudVsPain("m-1", "unstarted")})
	catalog := NewLeagueCatalog(map[string]string{testLeague: "98767991332355509"}, nil)
	service := NewMatchSyncService(catalog, schedule, nil, nil, nil, repo, nil, MatchSyncConfig{}, nil)

	stored := []match.Match{{ID: "m-1", State: match.StateUnstarted, League: match.League{Slug: testLeague}}}
	repo.On("UpdateLeague", mock.Anything, testLeague, mock.AnythingOfType("match.LeagueUpdate")).
		Return(func(_ context.Context, _ string, update match.LeagueUpdate) error {
			_, err := update(stored)
			return err
		}).
		Once()

	report, err := service.SyncLive(ctx, testLeague)
	if err != nil {
		t.Fatalf("live sync: %v", err)
	}
	if !report.Skipped || report.Matches != 1 {
		t.Fatalf("expected skipped report over the stored list, got %+v", report)
	}
}

func TestParseLiveSyncPolicy(t *testing.T) {
	t.Parallel()

	if got, err := ParseLiveSyncPolicy(""); err != nil || got != LiveSyncRefetch {
		t.Fatalf("unexpected default policy: got=%s err=%v", got, err)
	}
	if got, err := ParseLiveSyncPolicy(" Known-Live "); err != nil || got != LiveSyncKnownLive {
		t.Fatalf("unexpected known-live policy: got=%s err=%v", got, err)
	}
	if _, err := ParseLiveSyncPolicy("poll"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
