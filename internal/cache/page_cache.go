package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/maxviazov/user-directory-service/internal/metrics"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

// State of a key as seen by Peek.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
)

// PageCache serves pages from a Store and falls back to the upstream repository.
//
// Entries younger than staleTime are served as-is. Older entries, up to gcTime, are served
// immediately while a background fetch refreshes them. Anything older is a miss. Every key has
// at most one fetch in flight; concurrent callers share it. Fetches are detached from the caller,
// so a caller that gives up does not stop the page from landing in the cache.
type PageCache struct {
	repo         repository.UserRepository
	store        Store
	backend      string
	staleTime    time.Duration
	gcTime       time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// Option configures a PageCache.
type Option func(*PageCache)

// WithStore replaces the default in-memory store; backend labels the metrics.
func WithStore(s Store, backend string) Option {
	return func(c *PageCache) {
		c.store = s
		c.backend = backend
	}
}

// WithStaleTime sets how long an entry is served without revalidation.
func WithStaleTime(d time.Duration) Option {
	return func(c *PageCache) { c.staleTime = d }
}

// WithGCTime sets how long an entry is kept at all.
func WithGCTime(d time.Duration) Option {
	return func(c *PageCache) { c.gcTime = d }
}

// WithFetchTimeout bounds a single upstream fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *PageCache) { c.fetchTimeout = d }
}

// WithClock overrides time.Now; tests use it to age entries.
func WithClock(now func() time.Time) Option {
	return func(c *PageCache) { c.now = now }
}

func NewPageCache(repo repository.UserRepository, logger zerolog.Logger, opts ...Option) *PageCache {
	c := &PageCache{
		repo:         repo,
		store:        NewMemoryStore(),
		backend:      "memory",
		staleTime:    30 * time.Second,
		gcTime:       5 * time.Minute,
		fetchTimeout: 10 * time.Second,
		now:          time.Now,
		log:          logger.With().Str("module", "cache").Str("component", "pages").Logger(),
		inflight:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gcTime < c.staleTime {
		c.gcTime = c.staleTime
	}
	return c
}

// Get returns the page for p, from cache when possible. Only a miss waits on the network.
func (c *PageCache) Get(ctx context.Context, p repository.PageRequest) (repository.PageResult[model.User], error) {
	key := Key(p)

	if e, ok := c.lookup(ctx, key); ok {
		age := c.now().Sub(e.FetchedAt)
		switch {
		case age < c.staleTime:
			metrics.CacheLookupsTotal.WithLabelValues(c.backend, "fresh").Inc()
			return e.Result, nil
		case age < c.gcTime:
			metrics.CacheLookupsTotal.WithLabelValues(c.backend, "stale").Inc()
			c.revalidate(ctx, key, p)
			return e.Result, nil
		}
	}

	metrics.CacheLookupsTotal.WithLabelValues(c.backend, "miss").Inc()
	return c.load(ctx, key, p)
}

// Peek reports whether p is cached, being fetched, or neither. It never fetches.
func (c *PageCache) Peek(ctx context.Context, p repository.PageRequest) State {
	key := Key(p)
	if e, ok := c.lookup(ctx, key); ok && c.now().Sub(e.FetchedAt) < c.gcTime {
		return StateSuccess
	}
	if c.isInflight(key) {
		return StateLoading
	}
	return StateIdle
}

// Invalidate drops the entry for p; the next Get refetches it.
func (c *PageCache) Invalidate(ctx context.Context, p repository.PageRequest) error {
	return c.store.Delete(ctx, Key(p))
}

// InvalidateAll drops every cached page.
func (c *PageCache) InvalidateAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Ping reports the health of the backing store.
func (c *PageCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Wait blocks until background revalidations have finished.
func (c *PageCache) Wait() {
	c.wg.Wait()
}

func (c *PageCache) lookup(ctx context.Context, key string) (Entry, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		// a broken store degrades to fetching, never to failing the request
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return Entry{}, false
	}
	return e, ok
}

// load joins (or starts) the fetch for key and waits for it or for ctx, whichever comes first.
func (c *PageCache) load(ctx context.Context, key string, p repository.PageRequest) (repository.PageResult[model.User], error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(ctx, key, p)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return repository.PageResult[model.User]{}, r.Err
		}
		return r.Val.(repository.PageResult[model.User]), nil
	case <-ctx.Done():
		return repository.PageResult[model.User]{}, ctx.Err()
	}
}

func (c *PageCache) revalidate(ctx context.Context, key string, p repository.PageRequest) {
	if c.isInflight(key) {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ch := c.group.DoChan(key, func() (any, error) {
			return c.fetch(ctx, key, p)
		})
		if r := <-ch; r.Err != nil {
			c.log.Warn().Err(r.Err).Str("key", key).Msg("background revalidation failed; serving stale page")
		}
	}()
}

// fetch runs inside the singleflight call. It keeps the caller's values (request id) but not its
// cancellation, and stores successful results only.
func (c *PageCache) fetch(ctx context.Context, key string, p repository.PageRequest) (any, error) {
	c.setInflight(key, true)
	defer c.setInflight(key, false)
	metrics.CacheFetchesInFlight.Inc()
	defer metrics.CacheFetchesInFlight.Dec()

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.repo.ListUsers(fctx, p)
	if err != nil {
		metrics.CacheFetchErrorsTotal.Inc()
		ev := c.log.Error()
		if errors.Is(err, repository.ErrFetch) {
			ev = c.log.Warn()
		}
		ev.Err(err).Str("key", key).Dur("took", time.Since(start)).Msg("page fetch failed")
		return nil, err
	}

	if err := c.store.Set(fctx, key, Entry{Result: res, FetchedAt: c.now()}, c.gcTime); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	c.log.Debug().Str("key", key).Int("users", len(res.Items)).Int("total_pages", res.TotalPages).Dur("took", time.Since(start)).Msg("page fetched")
	return res, nil
}

func (c *PageCache) setInflight(key string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.inflight[key] = struct{}{}
	} else {
		delete(c.inflight, key)
	}
}

func (c *PageCache) isInflight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}
