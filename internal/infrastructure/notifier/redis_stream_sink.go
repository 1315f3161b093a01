package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
)

const (
	DefaultStreamKey    = "matches.notifications"
	defaultStreamMaxLen = 10000
)

// RedisStreamSink appends events to a redis stream read by the push delivery workers.
type RedisStreamSink struct {
	client goredis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisStreamSink(client goredis.UniversalClient, stream string) *RedisStreamSink {
	stream = strings.TrimSpace(stream)
	if stream == "" {
		stream = DefaultStreamKey
	}
	return &RedisStreamSink{client: client, stream: stream, maxLen: defaultStreamMaxLen}
}

func (s *RedisStreamSink) Publish(ctx context.Context, event notification.Event) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}

	err = s.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":       event.ID,
			"match_id": event.MatchID,
			"category": string(event.Category),
			"payload":  string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd notification stream=%s match_id=%s: %w", s.stream, event.MatchID, err)
	}
	return nil
}
