package notifier

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStreamSink_AppendsEvent(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()
	stream := "test-notifications-" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(context.Background(), stream).Err() })

	sink := NewRedisStreamSink(client, stream)
	if err := sink.Publish(ctx, resultEvent("evt-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected entries got=%d want=1", len(entries))
	}
	if entries[0].Values["match_id"] != "113475182181917386" || entries[0].Values["category"] != "result" {
		t.Fatalf("unexpected entry values: %v", entries[0].Values)
	}
}

func TestRedisClaimer_SharedWindow(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()
	key := "test-dedup-" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })

	first, second := NewRedisClaimer(client), NewRedisClaimer(client)
	if ok, err := first.Claim(ctx, key, time.Minute); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ok, err := second.Claim(ctx, key, time.Minute); err != nil || ok {
		t.Fatalf("second claim should lose: ok=%v err=%v", ok, err)
	}
	if err := first.Release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Claim(ctx, key, time.Minute); !ok {
		t.Fatalf("expected claim after release")
	}
}
