package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
	badgerstore "github.com/expatwise/retrieval/storage/badger"
)

func newTestCache(t *testing.T, opts ...Option) *SemanticCache {
	t.Helper()

	cacheStore, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	c, err := New(cacheStore, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := newTestCache(t)
		assert.Equal(t, defaultSimilarityThreshold, c.similarityThreshold)
		assert.Equal(t, defaultTTL, c.ttl)
		assert.Equal(t, defaultMaxEntries, c.maxEntries)
	})

	t.Run("requires store", func(t *testing.T) {
		_, err := New(nil)
		require.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("rejects invalid threshold", func(t *testing.T) {
		cacheStore, _, backend, err := badgerstore.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = New(cacheStore, WithSimilarityThreshold(1.5))
		require.ErrorIs(t, err, ErrInvalidThreshold)

		_, err = New(cacheStore, WithSimilarityThreshold(0))
		require.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("rejects invalid capacity", func(t *testing.T) {
		cacheStore, _, backend, err := badgerstore.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = New(cacheStore, WithMaxEntries(0))
		require.ErrorIs(t, err, ErrInvalidMaxEntries)
	})
}

func TestLookupMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entry, hit := c.Lookup(ctx, "unseen query", []float32{1, 0, 0})
	assert.Nil(t, entry)
	assert.Equal(t, core.CacheHitNone, hit)
}

func TestExactHit(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	payload := []byte("cached result")
	ok := c.Store(ctx, "How do I get a visa?", []float32{1, 0, 0}, payload, 0)
	require.True(t, ok)

	t.Run("same query", func(t *testing.T) {
		entry, hit := c.Lookup(ctx, "How do I get a visa?", nil)
		require.NotNil(t, entry)
		assert.Equal(t, core.CacheHitExact, hit)
		assert.Equal(t, payload, entry.Payload)
		assert.Equal(t, "How do I get a visa?", entry.Query)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		entry, hit := c.Lookup(ctx, "  how do i get a VISA?  ", nil)
		require.NotNil(t, entry)
		assert.Equal(t, core.CacheHitExact, hit)
		assert.Equal(t, payload, entry.Payload)
	})
}

func TestSemanticHit(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	vector := []float32{0.6, 0.8, 0}
	payload := []byte("cached result")
	require.True(t, c.Store(ctx, "how do I get a visa", vector, payload, 0))

	t.Run("similar embedding hits", func(t *testing.T) {
		entry, hit := c.Lookup(ctx, "visa acquisition process", vector)
		require.NotNil(t, entry)
		assert.Equal(t, core.CacheHitSemantic, hit)
		assert.Equal(t, payload, entry.Payload)
		assert.Equal(t, "how do I get a visa", entry.Query)
	})

	t.Run("dissimilar embedding misses", func(t *testing.T) {
		entry, hit := c.Lookup(ctx, "corporate tax deadline", []float32{0, 0, 1})
		assert.Nil(t, entry)
		assert.Equal(t, core.CacheHitNone, hit)
	})

	t.Run("nil embedding skips semantic pass", func(t *testing.T) {
		entry, hit := c.Lookup(ctx, "visa acquisition process", nil)
		assert.Nil(t, entry)
		assert.Equal(t, core.CacheHitNone, hit)
	})
}

func TestStoreRejectsEmptyInput(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	assert.False(t, c.Store(ctx, "", []float32{1}, []byte("payload"), 0))
	assert.False(t, c.Store(ctx, "   ", []float32{1}, []byte("payload"), 0))
	assert.False(t, c.Store(ctx, "query", []float32{1}, nil, 0))
}

func TestEviction(t *testing.T) {
	c := newTestCache(t, WithMaxEntries(2))
	ctx := context.Background()

	queries := []string{"first query", "second query", "third query"}
	for _, q := range queries {
		require.True(t, c.Store(ctx, q, []float32{1, 0}, []byte(q), 0))
		// Recency scores are microsecond timestamps; keep them distinct.
		time.Sleep(2 * time.Millisecond)
	}

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Size)

	// The oldest entry was evicted, the newer two survive.
	entry, hit := c.Lookup(ctx, "first query", nil)
	assert.Nil(t, entry)
	assert.Equal(t, core.CacheHitNone, hit)

	for _, q := range queries[1:] {
		entry, hit := c.Lookup(ctx, q, nil)
		require.NotNil(t, entry, "expected %q to survive eviction", q)
		assert.Equal(t, core.CacheHitExact, hit)
	}
}

func TestLookupRefreshesRecency(t *testing.T) {
	c := newTestCache(t, WithMaxEntries(2))
	ctx := context.Background()

	require.True(t, c.Store(ctx, "first query", []float32{1, 0}, []byte("a"), 0))
	time.Sleep(2 * time.Millisecond)
	require.True(t, c.Store(ctx, "second query", []float32{1, 0}, []byte("b"), 0))
	time.Sleep(2 * time.Millisecond)

	// Touch the oldest entry, then overflow: the untouched one must go.
	_, hit := c.Lookup(ctx, "first query", nil)
	require.Equal(t, core.CacheHitExact, hit)
	time.Sleep(2 * time.Millisecond)

	require.True(t, c.Store(ctx, "third query", []float32{1, 0}, []byte("c"), 0))

	entry, _ := c.Lookup(ctx, "second query", nil)
	assert.Nil(t, entry)
	entry, _ = c.Lookup(ctx, "first query", nil)
	assert.NotNil(t, entry)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Store(ctx, "some query", []float32{1, 0}, []byte("payload"), 0))
	require.NoError(t, c.Clear(ctx))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Size)

	entry, hit := c.Lookup(ctx, "some query", []float32{1, 0})
	assert.Nil(t, entry)
	assert.Equal(t, core.CacheHitNone, hit)
}

func TestStats(t *testing.T) {
	c := newTestCache(t, WithMaxEntries(10), WithSimilarityThreshold(0.9), WithDefaultTTL(time.Minute))
	ctx := context.Background()

	require.True(t, c.Store(ctx, "a query", []float32{1}, []byte("p"), 0))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
	assert.InDelta(t, 0.1, stats.Utilization, 1e-9)
	assert.Equal(t, 0.9, stats.SimilarityThreshold)
	assert.Equal(t, time.Minute, stats.DefaultTTL)
}

// failingStore errors on every operation, standing in for an unavailable
// cache backend.
type failingStore struct{}

var errBackendDown = errors.New("backend down")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }
func (failingStore) SetWithTTL(context.Context, []storage.CacheItem, time.Duration) error {
	return errBackendDown
}
func (failingStore) Delete(context.Context, ...string) error { return errBackendDown }
func (failingStore) Scan(context.Context, string, func(string, []byte) error) error {
	return errBackendDown
}
func (failingStore) RecencyAdd(context.Context, string, int64) error { return errBackendDown }
func (failingStore) RecencyOldest(context.Context, int) ([]string, error) {
	return nil, errBackendDown
}
func (failingStore) RecencyRemove(context.Context, ...string) error { return errBackendDown }
func (failingStore) RecencyCount(context.Context) (int, error)      { return 0, errBackendDown }
func (failingStore) RecencyClear(context.Context) error             { return errBackendDown }
func (failingStore) DropPrefix(context.Context, ...string) error    { return errBackendDown }
func (failingStore) Close() error                                   { return nil }

func TestFailsOpen(t *testing.T) {
	c, err := New(failingStore{})
	require.NoError(t, err)
	ctx := context.Background()

	entry, hit := c.Lookup(ctx, "any query", []float32{1, 0})
	assert.Nil(t, entry)
	assert.Equal(t, core.CacheHitNone, hit)

	assert.False(t, c.Store(ctx, "any query", []float32{1, 0}, []byte("payload"), 0))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
