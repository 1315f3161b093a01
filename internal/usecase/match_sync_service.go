package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// LiveSyncPolicy selects how the live cadence narrows the pipeline to in-progress matches.
type LiveSyncPolicy string

const (
	// LiveSyncRefetch fetches the full schedule and keeps matches live now or live before.
	LiveSyncRefetch LiveSyncPolicy = "refetch"
	// LiveSyncKnownLive only refreshes matches the store already holds as in progress.
	LiveSyncKnownLive LiveSyncPolicy = "known-live"
)

func ParseLiveSyncPolicy(raw string) (LiveSyncPolicy, error) {
	switch LiveSyncPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", LiveSyncRefetch:
		return LiveSyncRefetch, nil
	case LiveSyncKnownLive:
		return LiveSyncKnownLive, nil
	default:
		return "", fmt.Errorf("%w: unknown live sync policy %q", ErrInvalidInput, raw)
	}
}

type MatchSyncConfig struct {
	LivePolicy LiveSyncPolicy
}

const (
	SyncModeFull = "full"
	SyncModeLive = "live"
)

// LeagueSyncReport summarizes one league pass.
type LeagueSyncReport struct {
	League       string `json:"league"`
	Mode         string `json:"mode"`
	Fetched      int    `json:"fetched"`
	Matches      int    `json:"matches"`
	LiveMatches  int    `json:"live_matches"`
	VODs         int    `json:"vods"`
	Events       int    `json:"events"`
	Skipped      bool   `json:"skipped,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// SnapshotInvalidator drops read-side copies of a league once the sync service rewrote it.
type SnapshotInvalidator interface {
	InvalidateLeague(ctx context.Context, leagueSlug string)
}

// MatchSyncService is the only writer of the match store. It reads and writes the store directly,
// never through a read cache, and merges inside UpdateLeague so writers in other processes
// cannot interleave with a read-modify-write.
type MatchSyncService struct {
	catalog    *LeagueCatalog
	schedule   ScheduleProvider
	enricher   *VODEnricher
	normalizer *MatchNormalizer
	rosters    roster.Resolver
	matchRepo  match.Repository
	notifier   *StateChangeNotifier
	cfg        MatchSyncConfig
	logger     *logging.Logger
	locks      *keyedMutex

	invalidator SnapshotInvalidator
}

func NewMatchSyncService(
	catalog *LeagueCatalog,
	schedule ScheduleProvider,
	enricher *VODEnricher,
	normalizer *MatchNormalizer,
	rosters roster.Resolver,
	matchRepo match.Repository,
	notifier *StateChangeNotifier,
	cfg MatchSyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if normalizer == nil {
		normalizer = NewMatchNormalizer(MatchNormalizerConfig{}, logger)
	}
	if notifier == nil {
		notifier = NewStateChangeNotifier(nil, nil, logger)
	}
	if cfg.LivePolicy == "" {
		cfg.LivePolicy = LiveSyncRefetch
	}
	return &MatchSyncService{
		catalog:    catalog,
		schedule:   schedule,
		enricher:   enricher,
		normalizer: normalizer,
		rosters:    rosters,
		matchRepo:  matchRepo,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		locks:      newKeyedMutex(),
	}
}

// InvalidateAfterWrite registers the read cache to drop after every league write.
func (s *MatchSyncService) InvalidateAfterWrite(invalidator SnapshotInvalidator) {
	s.invalidator = invalidator
}

// SyncFull runs fetch, enrich, normalize and persist for one league. Any step error aborts the
// league and leaves its last good snapshot in place.
func (s *MatchSyncService) SyncFull(ctx context.Context, leagueSlug string) (LeagueSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncFull", leagueAttr(leagueSlug))
	defer span.End()

	report, err := s.syncFull(ctx, leagueSlug)
	recordSyncReport(span, report, err)
	return report, err
}

func (s *MatchSyncService) syncFull(ctx context.Context, leagueSlug string) (LeagueSyncReport, error) {
	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return LeagueSyncReport{}, err
	}
	report := LeagueSyncReport{League: league.Slug, Mode: SyncModeFull}

	unlock := s.locks.Lock(league.Slug)
	defer unlock()

	events, err := s.fetch(ctx, league)
	if err != nil {
		return report, err
	}
	report.Fetched = len(events)

	var vods map[string]string
	if s.enricher != nil {
		vods = s.enricher.Enrich(ctx, league.TournamentID)
	}
	report.VODs = len(vods)

	next := s.normalize(ctx, league.Slug, events, vods)

	var prev []match.Match
	err = s.update(ctx, league.Slug, func(stored []match.Match) ([]match.Match, error) {
		prev = stored
		return next, nil
	})
	if err != nil {
		return report, err
	}

	report.Matches = len(next)
	report.LiveMatches = len(match.FilterByState(next, match.StateInProgress))
	report.Events = len(s.notifier.Notify(ctx, prev, next))

	s.logger.InfoContext(ctx, "full sync completed",
		"league", league.Slug,
		"fetched", report.Fetched,
		"matches", report.Matches,
		"vods", report.VODs,
		"events", report.Events,
	)
	return report, nil
}

// SyncLive refreshes in-progress matches only. VOD data is carried over from the snapshot.
func (s *MatchSyncService) SyncLive(ctx context.Context, leagueSlug string) (LeagueSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncLive",
		leagueAttr(leagueSlug),
		attribute.String("sync.live_policy", string(s.cfg.LivePolicy)),
	)
	defer span.End()

	report, err := s.syncLive(ctx, leagueSlug)
	recordSyncReport(span, report, err)
	return report, err
}

func (s *MatchSyncService) syncLive(ctx context.Context, leagueSlug string) (LeagueSyncReport, error) {
	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return LeagueSyncReport{}, err
	}
	report := LeagueSyncReport{League: league.Slug, Mode: SyncModeLive}

	unlock := s.locks.Lock(league.Slug)
	defer unlock()

	if s.cfg.LivePolicy == LiveSyncKnownLive {
		// Cheap pre-check to skip the fetch; the merge below re-reads the stored list.
		current, err := s.previous(ctx, league.Slug)
		if err != nil {
			return report, err
		}
		if len(liveIDs(current)) == 0 {
			report.Skipped = true
			s.logger.DebugContext(ctx, "live sync skipped, no known live matches", "league", league.Slug)
			return report, nil
		}
	}

	events, err := s.fetch(ctx, league)
	if err != nil {
		return report, err
	}
	report.Fetched = len(events)

	var prev, next []match.Match
	refreshed := 0
	err = s.update(ctx, league.Slug, func(stored []match.Match) ([]match.Match, error) {
		prev = stored
		kept := s.liveSubset(ctx, league.Slug, events, stored)
		refreshed = len(kept)
		if len(kept) == 0 {
			return nil, match.ErrLeagueUnchanged
		}
		next = mergeByID(stored, kept)
		return next, nil
	})
	if errors.Is(err, match.ErrLeagueUnchanged) {
		report.Skipped = true
		report.Matches = len(prev)
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.Matches = len(next)
	report.LiveMatches = len(match.FilterByState(next, match.StateInProgress))
	report.Events = len(s.notifier.Notify(ctx, prev, next))

	s.logger.InfoContext(ctx, "live sync completed",
		"league", league.Slug,
		"refreshed", refreshed,
		"live", report.LiveMatches,
		"events", report.Events,
	)
	return report, nil
}

func (s *MatchSyncService) fetch(ctx context.Context, league LeagueConfig) ([]ExternalEvent, error) {
	if s.schedule == nil {
		return nil, fmt.Errorf("%w: schedule provider is not configured", ErrDependencyUnavailable)
	}
	events, err := s.schedule.FetchSchedule(ctx, league.ProviderLeagueID)
	if err != nil {
		if !errors.Is(err, ErrRemoteFetch) {
			err = fmt.Errorf("%w: %w", ErrRemoteFetch, err)
		}
		return nil, fmt.Errorf("fetch schedule league=%s: %w", league.Slug, err)
	}
	return events, nil
}

func (s *MatchSyncService) normalize(ctx context.Context, leagueSlug string, events []ExternalEvent, vods map[string]string) []match.Match {
	items := s.normalizer.Normalize(ctx, events, vods, s.rosters)
	for i := range items {
		items[i].League.Slug = leagueSlug
	}
	return items
}

func (s *MatchSyncService) previous(ctx context.Context, leagueSlug string) ([]match.Match, error) {
	items, err := s.matchRepo.ListByLeague(ctx, leagueSlug)
	if err != nil {
		return nil, persistenceError("read snapshot", leagueSlug, err)
	}
	return items, nil
}

// update rewrites one league atomically against the store and then drops read-side copies.
func (s *MatchSyncService) update(ctx context.Context, leagueSlug string, fn match.LeagueUpdate) error {
	err := s.matchRepo.UpdateLeague(ctx, leagueSlug, fn)
	if errors.Is(err, match.ErrLeagueUnchanged) {
		return err
	}
	if err != nil {
		return persistenceError("update snapshot", leagueSlug, err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateLeague(ctx, leagueSlug)
	}
	return nil
}

// liveSubset normalizes the fetched events against the stored list and keeps the matches the live
// policy refreshes. VOD data is carried over from the stored list.
func (s *MatchSyncService) liveSubset(ctx context.Context, leagueSlug string, events []ExternalEvent, stored []match.Match) []match.Match {
	storedByID := match.IndexByID(stored)
	knownLive := liveIDs(stored)

	normalized := s.normalize(ctx, leagueSlug, events, snapshotVODs(stored))
	kept := make([]match.Match, 0, len(knownLive))
	for _, item := range normalized {
		_, wasLive := knownLive[item.ID]
		switch s.cfg.LivePolicy {
		case LiveSyncKnownLive:
			if !wasLive {
				continue
			}
		default:
			if !item.IsLive() && !wasLive {
				continue
			}
		}
		if before, ok := storedByID[item.ID]; ok && before.HasVOD {
			item.HasVOD = true
		}
		kept = append(kept, item)
	}
	return kept
}

func liveIDs(items []match.Match) map[string]struct{} {
	out := make(map[string]struct{})
	for _, item := range items {
		if item.IsLive() {
			out[item.ID] = struct{}{}
		}
	}
	return out
}

func persistenceError(op, leagueSlug string, err error) error {
	if errors.Is(err, ErrPersistence) {
		return fmt.Errorf("%s league=%s: %w", op, leagueSlug, err)
	}
	return fmt.Errorf("%w: %s league=%s: %w", ErrPersistence, op, leagueSlug, err)
}

func snapshotVODs(items []match.Match) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		if item.VODURL != "" {
			out[item.ID] = item.VODURL
		}
	}
	return out
}

// mergeByID replaces entries of base by id and appends unknown ones, keeping base order.
func mergeByID(base, updates []match.Match) []match.Match {
	byID := match.IndexByID(updates)
	out := make([]match.Match, 0, len(base)+len(updates))
	seen := make(map[string]struct{}, len(base))
	for _, item := range base {
		if updated, ok := byID[item.ID]; ok {
			item = updated
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	for _, item := range updates {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
