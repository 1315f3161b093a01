package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

// MatchRepository holds one immutable slice per league. Replacing a league swaps the slice under
// the write lock, so readers see either the old or the new list.
type MatchRepository struct {
	mu              sync.RWMutex
	matchesByLeague map[string][]match.Match
	leagueByMatch   map[string]string
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	repo := &MatchRepository{
		matchesByLeague: make(map[string][]match.Match),
		leagueByMatch:   make(map[string]string),
	}
	for slug, items := range match.GroupByLeague(matches) {
		repo.replaceLocked(slug, items)
	}
	return repo
}

func (r *MatchRepository) SaveMatches(_ context.Context, matches []match.Match) error {
	groups := match.GroupByLeague(matches)

	r.mu.Lock()
	defer r.mu.Unlock()
	for slug, items := range groups {
		r.replaceLocked(slug, items)
	}
	return nil
}

func (r *MatchRepository) ReplaceLeague(_ context.Context, leagueSlug string, matches []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaceLocked(leagueSlug, matches)
	return nil
}

// UpdateLeague runs update under the write lock.
func (r *MatchRepository) UpdateLeague(_ context.Context, leagueSlug string, update match.LeagueUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := update(cloneMatches(r.matchesByLeague[leagueSlug]))
	if err != nil {
		return err
	}
	r.replaceLocked(leagueSlug, next)
	return nil
}

func (r *MatchRepository) replaceLocked(leagueSlug string, matches []match.Match) {
	for _, item := range r.matchesByLeague[leagueSlug] {
		if r.leagueByMatch[item.ID] == leagueSlug {
			delete(r.leagueByMatch, item.ID)
		}
	}

	if len(matches) == 0 {
		delete(r.matchesByLeague, leagueSlug)
		return
	}

	snapshot := make([]match.Match, 0, len(matches))
	for _, item := range matches {
		snapshot = append(snapshot, item.Clone())
		r.leagueByMatch[item.ID] = leagueSlug
	}
	r.matchesByLeague[leagueSlug] = snapshot
}

func (r *MatchRepository) ListByLeague(_ context.Context, leagueSlug string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneMatches(r.matchesByLeague[leagueSlug]), nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slug, ok := r.leagueByMatch[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	for _, item := range r.matchesByLeague[slug] {
		if item.ID == matchID {
			return item.Clone(), true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) ListByState(ctx context.Context, leagueSlug string, state match.State) ([]match.Match, error) {
	items, err := r.ListByLeague(ctx, leagueSlug)
	if err != nil {
		return nil, err
	}
	return match.FilterByState(items, state), nil
}

func (r *MatchRepository) ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]match.Match, error) {
	items, err := r.ListByLeague(ctx, leagueSlug)
	if err != nil {
		return nil, err
	}
	return match.FilterByBlock(items, blockName), nil
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
