package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
	basecache "github.com/riskibarqy/esports-match-sync/internal/platform/cache"
)

// RosterResolver caches roster lookups per team, instant and block.
type RosterResolver struct {
	next  roster.Resolver
	cache *basecache.Store[[]match.Player]
}

func NewRosterResolver(next roster.Resolver, ttl time.Duration) *RosterResolver {
	return &RosterResolver{next: next, cache: basecache.NewStore[[]match.Player](ttl)}
}

func (r *RosterResolver) ResolvePlayers(ctx context.Context, teamID string, at time.Time, blockName string) ([]match.Player, error) {
	key := "roster:" + teamID + ":" + at.UTC().Format(time.RFC3339) + ":" + strings.ToLower(strings.TrimSpace(blockName))
	players, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]match.Player, error) {
		items, err := r.next.ResolvePlayers(ctx, teamID, at, blockName)
		if err != nil {
			return nil, err
		}
		return append([]match.Player{}, items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]match.Player{}, players...), nil
}
