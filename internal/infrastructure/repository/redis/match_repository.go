package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

const (
	defaultKeyPrefix  = "matches"
	maxReplaceRetries = 5
)

// MatchRepository keeps one JSON list per league plus a hash from match id to league slug.
// Writes to a league watch its list key, so concurrent writers from other processes retry.
type MatchRepository struct {
	client goredis.UniversalClient
	prefix string
}

func NewMatchRepository(client goredis.UniversalClient, prefix string) *MatchRepository {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &MatchRepository{client: client, prefix: prefix}
}

func (r *MatchRepository) leagueKey(slug string) string {
	return r.prefix + ":league:" + slug
}

func (r *MatchRepository) indexKey() string {
	return r.prefix + ":index"
}

func (r *MatchRepository) SaveMatches(ctx context.Context, matches []match.Match) error {
	for slug, items := range match.GroupByLeague(matches) {
		if err := r.ReplaceLeague(ctx, slug, items); err != nil {
			return err
		}
	}
	return nil
}

func (r *MatchRepository) ReplaceLeague(ctx context.Context, leagueSlug string, matches []match.Match) error {
	return r.UpdateLeague(ctx, leagueSlug, func([]match.Match) ([]match.Match, error) {
		return matches, nil
	})
}

// UpdateLeague reads the stored list after WATCH, so a write from another process between the
// read and EXEC aborts the transaction and the update runs again on the fresh list.
func (r *MatchRepository) UpdateLeague(ctx context.Context, leagueSlug string, update match.LeagueUpdate) error {
	leagueKey := r.leagueKey(leagueSlug)

	apply := func(tx *goredis.Tx) error {
		previous, err := r.readLeague(ctx, tx, leagueSlug)
		if err != nil {
			return err
		}
		matches, err := update(previous)
		if err != nil {
			return err
		}
		payload, err := sonic.Marshal(matches)
		if err != nil {
			return fmt.Errorf("encode league matches league=%s: %w", leagueSlug, err)
		}

		keep := make(map[string]struct{}, len(matches))
		fields := make([]any, 0, len(matches)*2)
		for _, item := range matches {
			keep[item.ID] = struct{}{}
			fields = append(fields, item.ID, leagueSlug)
		}
		stale := make([]string, 0, len(previous))
		for _, item := range previous {
			if _, ok := keep[item.ID]; !ok {
				stale = append(stale, item.ID)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if len(stale) > 0 {
				pipe.HDel(ctx, r.indexKey(), stale...)
			}
			if len(matches) == 0 {
				pipe.Del(ctx, leagueKey)
				return nil
			}
			pipe.Set(ctx, leagueKey, payload, 0)
			pipe.HSet(ctx, r.indexKey(), fields...)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxReplaceRetries; attempt++ {
		err = r.client.Watch(ctx, apply, leagueKey)
		if !errors.Is(err, goredis.TxFailedErr) {
			break
		}
	}
	if errors.Is(err, match.ErrLeagueUnchanged) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update league matches league=%s: %w", leagueSlug, err)
	}
	return nil
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueSlug string) ([]match.Match, error) {
	return r.readLeague(ctx, r.client, leagueSlug)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	slug, err := r.client.HGet(ctx, r.indexKey(), matchID).Result()
	if errors.Is(err, goredis.Nil) {
		return match.Match{}, false, nil
	}
	if err != nil {
		return match.Match{}, false, fmt.Errorf("lookup match league match_id=%s: %w", matchID, err)
	}

	items, err := r.ListByLeague(ctx, slug)
	if err != nil {
		return match.Match{}, false, err
	}
	for _, item := range items {
		if item.ID == matchID {
			return item, true, nil
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

func (r *MatchRepository) readLeague(ctx context.Context, cmd goredis.Cmdable, leagueSlug string) ([]match.Match, error) {
	raw, err := cmd.Get(ctx, r.leagueKey(leagueSlug)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []match.Match{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read league matches league=%s: %w", leagueSlug, err)
	}

	var items []match.Match
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode league matches league=%s: %w", leagueSlug, err)
	}
	if items == nil {
		items = []match.Match{}
	}
	return items, nil
}
