package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (m *memStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func TestFindAndCache(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("miss fetches and populates", func(t *testing.T) {
		store := newMemStore()
		var sf singleflight.Group
		var calls int32

		got, err := FindAndCache(ctx, store, &sf, "k", time.Minute, logger, func(ctx context.Context) (map[string]float64, error) {
			atomic.AddInt32(&calls, 1)
			return map[string]float64{"acre": 1.5}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1.5, got["acre"])
		assert.Eventually(t, func() bool { return store.has("k") }, time.Second, 5*time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("hit returns cached value", func(t *testing.T) {
		store := newMemStore()
		require.NoError(t, store.Set(ctx, "k", []string{"cached"}, time.Minute))
		var sf singleflight.Group

		got, err := FindAndCache(ctx, store, &sf, "k", time.Minute, logger, func(ctx context.Context) ([]string, error) {
			return []string{"fresh"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"cached"}, got)
	})

	t.Run("hit refreshes in background", func(t *testing.T) {
		store := newMemStore()
		require.NoError(t, store.Set(ctx, "k", 1, time.Minute))
		var sf singleflight.Group
		var calls int32

		got, err := FindAndCache(ctx, store, &sf, "k", time.Minute, logger, func(ctx context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 2, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, got)
		assert.Eventually(t, func() bool {
			var v int
			return store.Get(ctx, "k", &v) == nil && v == 2
		}, 3*time.Second, 10*time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("hit without refresh-ahead leaves source alone", func(t *testing.T) {
		store := newMemStore()
		require.NoError(t, store.Set(ctx, "k", 1, time.Minute))
		var sf singleflight.Group
		var calls int32

		for range 5 {
			got, err := FindAndCache(ctx, store, &sf, "k", time.Minute, logger, func(ctx context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				return 2, nil
			}, WithoutRefreshAhead())
			require.NoError(t, err)
			assert.Equal(t, 1, got)
		}
		assert.Never(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 1500*time.Millisecond, 50*time.Millisecond)
	})

	t.Run("fetch error is returned and nothing stored", func(t *testing.T) {
		store := newMemStore()
		var sf singleflight.Group
		boom := errors.New("boom")

		_, err := FindAndCache(ctx, store, &sf, "k", time.Minute, logger, func(ctx context.Context) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, store.has("k"))
	})

	t.Run("broken store is treated as a miss", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("connection reset")
		var sf singleflight.Group

		got, err := FindAndCache(ctx, store, &sf, "k", time.Minute, nil, func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})

	t.Run("nil store calls through", func(t *testing.T) {
		var sf singleflight.Group

		got, err := FindAndCache[int](ctx, nil, &sf, "k", time.Minute, logger, func(ctx context.Context) (int, error) {
			return 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})
}

func TestAddTTLJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), addTTLJitter(0))
	assert.Greater(t, addTTLJitter(time.Second), time.Duration(0))
	for i := 0; i < 50; i++ {
		got := addTTLJitter(10 * time.Minute)
		assert.GreaterOrEqual(t, got, 10*time.Minute-15*time.Second)
		assert.Less(t, got, 10*time.Minute+15*time.Second)
	}
}
