// ABOUTME: Generic coalescing entity store with an LRU or unbounded backing map.
// ABOUTME: Concurrent misses for one id share a single in-flight fetch via singleflight.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// ErrNoFetcher is returned by Get on a miss when the store was built
// without a fetch function (the two-key message path bypasses it).
var ErrNoFetcher = errors.New("cache: store has no fetch function")

// FetchFunc loads an entity by id from the REST API.
type FetchFunc[T any] func(ctx context.Context, id string) (T, error)

// Store is a per-type entity cache. A capacity of zero means an
// unbounded map; otherwise the backing store is a bounded LRU.
type Store[T any] struct {
	name  string
	fetch FetchFunc[T]

	mu    sync.Mutex
	lru   *lru.Cache  // capacity > 0
	items map[string]T // capacity == 0

	group  singleflight.Group
	logger *slog.Logger
}

// NewStore creates a store named for logging. Pass nil logger for
// default and nil fetch for a store that only serves Set values.
func NewStore[T any](name string, capacity int, fetch FetchFunc[T], logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store[T]{
		name:   name,
		fetch:  fetch,
		logger: logger.With("cache", name),
	}
	if capacity > 0 {
		s.lru = lru.New(capacity)
	} else {
		s.items = make(map[string]T)
	}
	return s
}

// Get returns the cached value for id, joining an in-flight fetch if
// one exists, and issuing a new fetch only on a cold miss.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	if v, ok := s.Lookup(id); ok {
		return v, nil
	}
	if s.fetch == nil {
		var zero T
		return zero, ErrNoFetcher
	}
	return s.do(ctx, id, s.fetch)
}

// Fetch bypasses the cached value and loads from the API, still
// coalescing with any fetch already in flight for id.
func (s *Store[T]) Fetch(ctx context.Context, id string) (T, error) {
	if s.fetch == nil {
		var zero T
		return zero, ErrNoFetcher
	}
	return s.do(ctx, id, s.fetch)
}

// do runs fetch under the flight group. The winning call writes the
// result through to the backing store; on failure the group forgets
// the key, so the next caller retries with a fresh request.
func (s *Store[T]) do(ctx context.Context, id string, fetch FetchFunc[T]) (T, error) {
	v, err, shared := s.group.Do(id, func() (any, error) {
		val, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		s.Set(id, val)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		s.logger.Debug("coalesced fetch", "id", id)
	}
	return v.(T), nil
}

// Set stores the value for id, overwriting any previous value whole.
// Push-event write-through lands here; there is no field-level merge.
func (s *Store[T]) Set(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru != nil {
		s.lru.Add(id, v)
		return
	}
	s.items[id] = v
}

// Lookup reports the resolved value for id without fetching.
func (s *Store[T]) Lookup(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru != nil {
		if v, ok := s.lru.Get(id); ok {
			return v.(T), true
		}
		var zero T
		return zero, false
	}
	v, ok := s.items[id]
	return v, ok
}

// Remove drops the cached value for id, if any.
func (s *Store[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru != nil {
		s.lru.Remove(id)
		return
	}
	delete(s.items, id)
}

// Len reports how many resolved entries the store holds.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru != nil {
		return s.lru.Len()
	}
	return len(s.items)
}
