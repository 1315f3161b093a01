package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	basecache "github.com/riskibarqy/esports-match-sync/internal/platform/cache"
)

const (
	matchLeaguePrefix = "match:league:"
	matchIDPrefix     = "match:id:"
)

// MatchRepository is a read-through decorator. Writes go to next and then drop the cached
// lists of the written league plus every cached id lookup.
type MatchRepository struct {
	next  match.Repository
	lists *basecache.Store[[]match.Match]
	byID  *basecache.Store[cachedMatchByID]
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

func NewMatchRepository(next match.Repository, ttl time.Duration) *MatchRepository {
	return &MatchRepository{
		next:  next,
		lists: basecache.NewStore[[]match.Match](ttl),
		byID:  basecache.NewStore[cachedMatchByID](ttl),
	}
}

func (r *MatchRepository) SaveMatches(ctx context.Context, matches []match.Match) error {
	if err := r.next.SaveMatches(ctx, matches); err != nil {
		return err
	}
	for slug := range match.GroupByLeague(matches) {
		r.InvalidateLeague(ctx, slug)
	}
	return nil
}

func (r *MatchRepository) ReplaceLeague(ctx context.Context, leagueSlug string, matches []match.Match) error {
	if err := r.next.ReplaceLeague(ctx, leagueSlug, matches); err != nil {
		return err
	}
	r.InvalidateLeague(ctx, leagueSlug)
	return nil
}

// UpdateLeague never consults the cache: the stored list comes straight from next.
func (r *MatchRepository) UpdateLeague(ctx context.Context, leagueSlug string, update match.LeagueUpdate) error {
	if err := r.next.UpdateLeague(ctx, leagueSlug, update); err != nil {
		return err
	}
	r.InvalidateLeague(ctx, leagueSlug)
	return nil
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueSlug string) ([]match.Match, error) {
	return r.cachedList(ctx, leagueKey(leagueSlug, "all"), func(ctx context.Context) ([]match.Match, error) {
		return r.next.ListByLeague(ctx, leagueSlug)
	})
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, matchIDPrefix+matchID, func(ctx context.Context) (cachedMatchByID, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return cachedMatchByID{}, err
		}
		return cachedMatchByID{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}
	return cached.value.Clone(), cached.exists, nil
}

func (r *MatchRepository) ListByState(ctx context.Context, leagueSlug string, state match.State) ([]match.Match, error) {
	return r.cachedList(ctx, leagueKey(leagueSlug, "state:"+string(state)), func(ctx context.Context) ([]match.Match, error) {
		return r.next.ListByState(ctx, leagueSlug, state)
	})
}

func (r *MatchRepository) ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]match.Match, error) {
	block := strings.ToLower(strings.TrimSpace(blockName))
	return r.cachedList(ctx, leagueKey(leagueSlug, "block:"+block), func(ctx context.Context) ([]match.Match, error) {
		return r.next.ListByBlock(ctx, leagueSlug, blockName)
	})
}

func (r *MatchRepository) cachedList(ctx context.Context, key string, load func(context.Context) ([]match.Match, error)) ([]match.Match, error) {
	items, err := r.lists.GetOrLoad(ctx, key, func(ctx context.Context) ([]match.Match, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cloneMatches(loaded), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMatches(items), nil
}

// InvalidateLeague drops the cached lists of one league and every cached id lookup. Writers that
// bypass this decorator call it after each write.
func (r *MatchRepository) InvalidateLeague(ctx context.Context, leagueSlug string) {
	r.lists.DeletePrefix(ctx, matchLeaguePrefix+leagueSlug+":")
	r.byID.DeletePrefix(ctx, matchIDPrefix)
}

func leagueKey(leagueSlug, suffix string) string {
	return matchLeaguePrefix + leagueSlug + ":" + suffix
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
