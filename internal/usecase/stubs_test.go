package usecase

import (
	"context"
	"sync"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
)

type stubScheduleProvider struct {
	mu     sync.Mutex
	events map[string][]ExternalEvent
	err    error
	calls  int
}

func (s *stubScheduleProvider) FetchSchedule(_ context.Context, providerLeagueID string) ([]ExternalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events[providerLeagueID], nil
}

func (s *stubScheduleProvider) set(providerLeagueID string, events []ExternalEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[string][]ExternalEvent)
	}
	s.events[providerLeagueID] = events
}

type stubVODProvider struct {
	events []ExternalVODEvent
	err    error
	calls  int
}

func (s *stubVODProvider) FetchCompletedEvents(_ context.Context, _ string) ([]ExternalVODEvent, error) {
	s.calls++
	return s.events, s.err
}

// stubMatchStore keeps whole league lists, mirroring the replace semantics of the real stores.
type stubMatchStore struct {
	mu       sync.Mutex
	byLeague map[string][]match.Match
}

func newStubMatchStore() *stubMatchStore {
	return &stubMatchStore{byLeague: make(map[string][]match.Match)}
}

func (s *stubMatchStore) SaveMatches(ctx context.Context, items []match.Match) error {
	for slug, group := range match.GroupByLeague(items) {
		if err := s.ReplaceLeague(ctx, slug, group); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubMatchStore) ReplaceLeague(_ context.Context, leagueSlug string, items []match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLeague[leagueSlug] = append([]match.Match(nil), items...)
	return nil
}

func (s *stubMatchStore) UpdateLeague(_ context.Context, leagueSlug string, update match.LeagueUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := update(append([]match.Match(nil), s.byLeague[leagueSlug]...))
	if err != nil {
		return err
	}
	s.byLeague[leagueSlug] = append([]match.Match(nil), next...)
	return nil
}

func (s *stubMatchStore) ListByLeague(_ context.Context, leagueSlug string) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]match.Match(nil), s.byLeague[leagueSlug]...), nil
}

func (s *stubMatchStore) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, items := range s.byLeague {
		for _, item := range items {
			if item.ID == matchID {
				return item, true, nil
			}
		}
	}
	return match.Match{}, false, nil
}

func (s *stubMatchStore) ListByState(ctx context.Context, leagueSlug string, state match.State) ([]match.Match, error) {
	items, _ := s.ListByLeague(ctx, leagueSlug)
	return match.FilterByState(items, state), nil
}

func (s *stubMatchStore) ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]match.Match, error) {
	items, _ := s.ListByLeague(ctx, leagueSlug)
	return match.FilterByBlock(items, blockName), nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event notification.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) published() []notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Event(nil), s.events...)
}

func externalMatchEvent(id, start, state, block string, a, b ExternalTeam) ExternalEvent {
	return ExternalEvent{
		StartTime: start,
		State:     state,
		Type:      "match",
		BlockName: block,
		League:    ExternalLeague{Name: "CBLOL", Slug: "cblol-brazil"},
		Match: &ExternalMatch{
			ID:       id,
			Teams:    []ExternalTeam{a, b},
			Strategy: ExternalStrategy{Type: "bestOf", Count: 5},
		},
	}
}

func teamWithResult(code, name, outcome string, gameWins int) ExternalTeam {
	return ExternalTeam{
		Name:   name,
		Code:   code,
		Image:  "http://static.lolesports.com/teams/" + code + ".png",
		Result: &ExternalTeamResult{Outcome: outcome, GameWins: gameWins},
	}
}
