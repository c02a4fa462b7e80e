// Package cache keeps fetched user pages keyed by (page, limit) with
// stale-while-revalidate semantics and a single in-flight fetch per key.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

// Entry is one cached page together with the moment it was fetched.
type Entry struct {
	Result    repository.PageResult[model.User] `json:"result"`
	FetchedAt time.Time                         `json:"fetched_at"`
}

// Store is the storage behind a PageCache. Implementations only need to honor ttl as an upper
// bound on retention; freshness is judged by the PageCache from Entry.FetchedAt.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Key is the cache key of a page request.
func Key(p repository.PageRequest) string {
	return fmt.Sprintf("users:%d:%d", p.Page, p.Limit)
}

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired items are dropped lazily on access and
// swept on every write.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt) {
		s.mu.Lock()
		// re-check: a concurrent Set may have replaced it
		if cur, ok := s.items[key]; ok && cur.expiresAt.Equal(it.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return Entry{}, false, nil
	}
	return it.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, ttl time.Duration) error {
	now := s.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, it := range s.items {
		if !it.expiresAt.IsZero() && !now.Before(it.expiresAt) {
			delete(s.items, k)
		}
	}
	s.items[key] = memoryItem{entry: e, expiresAt: exp}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]memoryItem)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// TieredStore reads through a local L1 before a shared L2 and writes to both.
// Local copies, written or promoted from L2, live for at most l1TTL.
type TieredStore struct {
	l1    Store
	l2    Store
	l1TTL time.Duration
}

func NewTieredStore(l1, l2 Store, l1TTL time.Duration) *TieredStore {
	return &TieredStore{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (s *TieredStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if e, ok, err := s.l1.Get(ctx, key); err == nil && ok {
		return e, true, nil
	}
	e, ok, err := s.l2.Get(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	_ = s.l1.Set(ctx, key, e, s.l1TTL)
	return e, true, nil
}

func (s *TieredStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	_ = s.l1.Set(ctx, key, e, s.localTTL(ttl))
	return s.l2.Set(ctx, key, e, ttl)
}

// localTTL caps ttl by l1TTL; a non-positive l1TTL leaves ttl as is.
func (s *TieredStore) localTTL(ttl time.Duration) time.Duration {
	if s.l1TTL <= 0 {
		return ttl
	}
	if ttl <= 0 {
		return s.l1TTL
	}
	return min(ttl, s.l1TTL)
}

func (s *TieredStore) Delete(ctx context.Context, keys ...string) error {
	_ = s.l1.Delete(ctx, keys...)
	return s.l2.Delete(ctx, keys...)
}

func (s *TieredStore) Clear(ctx context.Context) error {
	_ = s.l1.Clear(ctx)
	return s.l2.Clear(ctx)
}

func (s *TieredStore) Ping(ctx context.Context) error { return s.l2.Ping(ctx) }
