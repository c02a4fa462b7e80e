package cache_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/cache"
	"github.com/maxviazov/user-directory-service/internal/config"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

var (
	_ cache.Store = (*cache.MemoryStore)(nil)
	_ cache.Store = (*cache.RedisStore)(nil)
	_ cache.Store = (*cache.TieredStore)(nil)
)

func sampleEntry() cache.Entry {
	return cache.Entry{
		Result: repository.PageResult[model.User]{
			Items:      []model.User{{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"}},
			TotalCount: 10,
			TotalPages: 2,
		},
		FetchedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// runStoreContract exercises behavior every Store must share.
func runStoreContract(t *testing.T, makeStore func(t *testing.T) cache.Store) {
	t.Run("miss", func(t *testing.T) {
		_, ok, err := makeStore(t).Get(context.Background(), "users:1:5")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set_get", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
		got, ok, err := s.Get(ctx, "users:1:5")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, sampleEntry().Result, got.Result)
		assert.True(t, sampleEntry().FetchedAt.Equal(got.FetchedAt))
	})

	t.Run("delete_and_clear", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
		require.NoError(t, s.Set(ctx, "users:2:5", sampleEntry(), time.Minute))
		require.NoError(t, s.Set(ctx, "users:3:5", sampleEntry(), time.Minute))

		require.NoError(t, s.Delete(ctx, "users:1:5"))
		_, ok, _ := s.Get(ctx, "users:1:5")
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, "users:2:5")
		assert.True(t, ok)

		require.NoError(t, s.Clear(ctx))
		_, ok, _ = s.Get(ctx, "users:2:5")
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, "users:3:5")
		assert.False(t, ok)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, makeStore(t).Ping(context.Background()))
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) cache.Store { return cache.NewMemoryStore() })
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) cache.Store {
		_, rdb := newRedis(t)
		return cache.NewRedisStore(rdb, "test:")
	})
}

func TestTieredStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) cache.Store {
		_, rdb := newRedis(t)
		return cache.NewTieredStore(cache.NewMemoryStore(), cache.NewRedisStore(rdb, "test:"), time.Minute)
	})
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	s := cache.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", sampleEntry(), 20*time.Millisecond))
	_, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	s := cache.NewRedisStore(rdb, "userdir:")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
	assert.True(t, mr.Exists("userdir:users:1:5"))
	assert.Equal(t, time.Minute, mr.TTL("userdir:users:1:5"))

	// keys outside the prefix survive Clear
	require.NoError(t, mr.Set("other:key", "v"))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("userdir:users:1:5"))
	assert.True(t, mr.Exists("other:key"))

	require.NoError(t, s.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Get(ctx, "users:1:5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptValueIsMiss(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set("p:users:1:5", "{not json"))
	_, ok, err := cache.NewRedisStore(rdb, "p:").Get(context.Background(), "users:1:5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTieredStore_PromotesFromL2(t *testing.T) {
	_, rdb := newRedis(t)
	l1 := cache.NewMemoryStore()
	l2 := cache.NewRedisStore(rdb, "p:")
	s := cache.NewTieredStore(l1, l2, time.Minute)
	ctx := context.Background()

	// another replica wrote the page
	require.NoError(t, l2.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
	_, ok, _ := l1.Get(ctx, "users:1:5")
	require.False(t, ok)

	_, ok, err := s.Get(ctx, "users:1:5")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, _ = l1.Get(ctx, "users:1:5")
	assert.True(t, ok)
}

func TestPageCache_SharedRedisAcrossReplicas(t *testing.T) {
	_, rdb := newRedis(t)
	repo := &stubRepo{}
	clock := newFakeClock()
	replica := func() *cache.PageCache {
		store := cache.NewTieredStore(cache.NewMemoryStore(), cache.NewRedisStore(rdb, "p:"), time.Minute)
		return newCache(repo, clock, cache.WithStore(store, "redis"))
	}

	a, b := replica(), replica()
	_, err := a.Get(context.Background(), req)
	require.NoError(t, err)
	_, err = b.Get(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	rdb, err := cache.NewRedisClient(config.RedisConfig{Host: host, Port: port}, zerolog.Nop())
	require.NoError(t, err)
	_ = rdb.Close()

	mr.Close()
	_, err = cache.NewRedisClient(config.RedisConfig{Host: host, Port: port}, zerolog.Nop())
	assert.Error(t, err)
}

func TestTieredStore_LocalCopyBoundedByL1TTL(t *testing.T) {
	l1 := cache.NewMemoryStore()
	l2 := cache.NewMemoryStore()
	s := cache.NewTieredStore(l1, l2, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users:1:5", sampleEntry(), time.Minute))
	_, ok, _ := l1.Get(ctx, "users:1:5")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, _ = l1.Get(ctx, "users:1:5")
	assert.False(t, ok, "local copy outlived l1TTL")
	_, ok, _ = l2.Get(ctx, "users:1:5")
	assert.True(t, ok, "shared copy keeps the full ttl")

	_, ok, err := s.Get(ctx, "users:1:5")
	require.NoError(t, err)
	assert.True(t, ok)
}
