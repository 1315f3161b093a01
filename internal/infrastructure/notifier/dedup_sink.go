package notifier

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	"github.com/riskibarqy/esports-match-sync/internal/platform/cache"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
)

const (
	DefaultDedupTTL = 6 * time.Hour

	releaseTimeout = 2 * time.Second
)

// Claimer reserves a key for ttl and reports whether this caller got it.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Releaser gives a claim back before its TTL runs out.
type Releaser interface {
	Release(ctx context.Context, key string) error
}

// DedupSink drops an event when the same match and category was already published within the TTL.
// A claim is released again when the wrapped sink fails so a later sync can retry.
type DedupSink struct {
	next    notification.Sink
	claimer Claimer
	ttl     time.Duration
	logger  *logging.Logger
}

func NewDedupSink(next notification.Sink, claimer Claimer, ttl time.Duration, logger *logging.Logger) *DedupSink {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DedupSink{next: next, claimer: claimer, ttl: ttl, logger: logger}
}

func (s *DedupSink) Publish(ctx context.Context, event notification.Event) error {
	key := "notify:dedup:" + event.DedupKey()
	claimed, err := s.claimer.Claim(ctx, key, s.ttl)
	if err != nil {
		s.logger.WarnContext(ctx, "notification dedup claim failed, publishing anyway", "match_id", event.MatchID, "error", err)
		return s.next.Publish(ctx, event)
	}
	if !claimed {
		s.logger.DebugContext(ctx, "notification dropped as duplicate", "match_id", event.MatchID, "category", event.Category)
		return nil
	}

	if err := s.next.Publish(ctx, event); err != nil {
		s.release(ctx, key, event)
		return err
	}
	return nil
}

// release detaches from ctx: a publish that failed because the run timed out must still give the
// claim back, or the event stays suppressed for the whole TTL.
func (s *DedupSink) release(ctx context.Context, key string, event notification.Event) {
	releaser, ok := s.claimer.(Releaser)
	if !ok {
		return
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := releaser.Release(releaseCtx, key); err != nil {
		s.logger.WarnContext(ctx, "notification dedup release failed, event suppressed until the claim expires",
			"match_id", event.MatchID,
			"category", event.Category,
			"ttl", s.ttl,
			"error", err,
		)
	}
}

// RedisClaimer claims keys with SET NX so every instance shares one dedup window.
type RedisClaimer struct {
	client goredis.UniversalClient
}

func NewRedisClaimer(client goredis.UniversalClient) *RedisClaimer {
	return &RedisClaimer{client: client}
}

func (c *RedisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

func (c *RedisClaimer) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// MemoryClaimer claims keys in the process-local TTL cache.
type MemoryClaimer struct {
	store *cache.Store[struct{}]
}

func NewMemoryClaimer() *MemoryClaimer {
	return &MemoryClaimer{store: cache.NewStore[struct{}](0)}
}

func (c *MemoryClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.store.SetIfAbsent(ctx, key, struct{}{}, ttl), nil
}

func (c *MemoryClaimer) Release(ctx context.Context, key string) error {
	c.store.Delete(ctx, key)
	return nil
}
