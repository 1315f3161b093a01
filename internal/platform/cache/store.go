// Package cache is the in-process TTL cache behind the match and roster read paths
// and the in-memory dedup claimer.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) live(now time.Time) bool {
	return e.expiresAt.IsZero() || e.expiresAt.After(now)
}

// Store is a TTL map with per-key load coalescing. A zero TTL keeps entries until deleted.
//
// Every delete bumps a generation counter; a load that started before the bump does
// not write its result back, so a replace followed by an invalidation cannot be undone
// by a read that was already in flight.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	gen     uint64
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{entries: make(map[string]entry[V]), ttl: ttl, now: time.Now}
}

func (s *Store[V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && e.live(s.now()) {
		return e.value, true
	}
	if ok {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && !cur.live(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
	}
	var zero V
	return zero, false
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.expiry(s.ttl)}
	s.mu.Unlock()
}

// SetIfAbsent stores value only when key is missing or expired and reports whether it did.
func (s *Store[V]) SetIfAbsent(_ context.Context, key string, value V, ttl time.Duration) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.live(s.now()) {
		return false
	}
	s.entries[key] = entry[V]{value: value, expiresAt: s.expiry(ttl)}
	return true
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.gen++
	s.mu.Unlock()
}

func (s *Store[V]) DeletePrefix(_ context.Context, prefix string) {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.gen++
	s.mu.Unlock()
}

func (s *Store[V]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once per key across concurrent
// callers. Loader errors are returned to every waiter and never cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, fmt.Errorf("cache: loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}
		s.mu.RLock()
		startGen := s.gen
		s.mu.RUnlock()

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.gen == startGen {
			s.entries[key] = entry[V]{value: loaded, expiresAt: s.expiry(s.ttl)}
		}
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ := out.(V)
	return v, nil
}
