package badger

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/expatwise/retrieval/storage"
)

func newTestCacheStore(t *testing.T) storage.CacheStore {
	t.Helper()
	cacheStore, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() {
		cacheStore.Close()
		backend.Close()
	})
	return cacheStore
}

func TestCacheStoreSetGet(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{
		{Key: "res:abc", Value: []byte("result payload")},
		{Key: "emb:abc", Value: []byte("embedding payload")},
	}
	if err := store.SetWithTTL(ctx, items, 0); err != nil {
		t.Fatalf("Failed to set items: %v", err)
	}

	value, err := store.Get(ctx, "res:abc")
	if err != nil {
		t.Fatalf("Failed to get key: %v", err)
	}
	if string(value) != "result payload" {
		t.Fatalf("Expected 'result payload', got %q", value)
	}

	value, err = store.Get(ctx, "emb:abc")
	if err != nil {
		t.Fatalf("Failed to get key: %v", err)
	}
	if string(value) != "embedding payload" {
		t.Fatalf("Expected 'embedding payload', got %q", value)
	}
}

func TestCacheStoreGetMissing(t *testing.T) {
	store := newTestCacheStore(t)

	_, err := store.Get(context.Background(), "res:missing")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestCacheStoreTTLExpiry(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{{Key: "res:short", Value: []byte("v")}}
	if err := store.SetWithTTL(ctx, items, 50*time.Millisecond); err != nil {
		t.Fatalf("Failed to set item: %v", err)
	}

	if _, err := store.Get(ctx, "res:short"); err != nil {
		t.Fatalf("Expected live entry, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	_, err := store.Get(ctx, "res:short")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound after expiry, got %v", err)
	}
}

func TestCacheStoreDelete(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{{Key: "res:del", Value: []byte("v")}}
	if err := store.SetWithTTL(ctx, items, 0); err != nil {
		t.Fatalf("Failed to set item: %v", err)
	}

	// Deleting a mix of existing and missing keys is not an error.
	if err := store.Delete(ctx, "res:del", "res:never-existed"); err != nil {
		t.Fatalf("Failed to delete keys: %v", err)
	}

	_, err := store.Get(ctx, "res:del")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestCacheStoreScan(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{
		{Key: "emb:a", Value: []byte("1")},
		{Key: "emb:b", Value: []byte("2")},
		{Key: "res:a", Value: []byte("3")},
	}
	if err := store.SetWithTTL(ctx, items, 0); err != nil {
		t.Fatalf("Failed to set items: %v", err)
	}

	seen := map[string]string{}
	err := store.Scan(ctx, "emb:", func(key string, value []byte) error {
		seen[key] = string(value)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(seen), seen)
	}
	// Keys come back as the caller stored them, store prefix stripped.
	if seen["emb:a"] != "1" || seen["emb:b"] != "2" {
		t.Fatalf("Unexpected scan results: %v", seen)
	}
}

func TestCacheStoreScanStopsOnError(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{
		{Key: "emb:a", Value: []byte("1")},
		{Key: "emb:b", Value: []byte("2")},
	}
	if err := store.SetWithTTL(ctx, items, 0); err != nil {
		t.Fatalf("Failed to set items: %v", err)
	}

	stop := errors.New("stop")
	visits := 0
	err := store.Scan(ctx, "emb:", func(key string, value []byte) error {
		visits++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Expected callback error to propagate, got %v", err)
	}
	if visits != 1 {
		t.Fatalf("Expected iteration to stop after 1 visit, got %d", visits)
	}
}

func TestRecencyOrdering(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	// Insert out of order; RecencyOldest must return ascending by score.
	if err := store.RecencyAdd(ctx, "c", 300); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if err := store.RecencyAdd(ctx, "a", 100); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if err := store.RecencyAdd(ctx, "b", 200); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	oldest, err := store.RecencyOldest(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list oldest: %v", err)
	}
	if len(oldest) != 2 || oldest[0] != "a" || oldest[1] != "b" {
		t.Fatalf("Expected [a b], got %v", oldest)
	}

	count, err := store.RecencyCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count members: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 members, got %d", count)
	}
}

func TestRecencyAddReplacesScore(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	if err := store.RecencyAdd(ctx, "a", 100); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if err := store.RecencyAdd(ctx, "b", 200); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	// Touch "a" so it becomes the most recent.
	if err := store.RecencyAdd(ctx, "a", 300); err != nil {
		t.Fatalf("Failed to re-add member: %v", err)
	}

	count, err := store.RecencyCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count members: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected re-add to replace, got count %d", count)
	}

	oldest, err := store.RecencyOldest(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list oldest: %v", err)
	}
	if len(oldest) != 1 || oldest[0] != "b" {
		t.Fatalf("Expected [b], got %v", oldest)
	}
}

func TestRecencyRemove(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	for i, member := range []string{"a", "b", "c"} {
		if err := store.RecencyAdd(ctx, member, int64(i)); err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
	}

	// Removing a missing member alongside real ones is not an error.
	if err := store.RecencyRemove(ctx, "b", "missing"); err != nil {
		t.Fatalf("Failed to remove members: %v", err)
	}

	oldest, err := store.RecencyOldest(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list oldest: %v", err)
	}
	sort.Strings(oldest)
	if len(oldest) != 2 || oldest[0] != "a" || oldest[1] != "c" {
		t.Fatalf("Expected [a c], got %v", oldest)
	}
}

func TestRecencyClear(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	for i, member := range []string{"a", "b"} {
		if err := store.RecencyAdd(ctx, member, int64(i)); err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
	}

	if err := store.RecencyClear(ctx); err != nil {
		t.Fatalf("Failed to clear index: %v", err)
	}

	count, err := store.RecencyCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count members: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty index, got %d members", count)
	}
}

func TestCacheStoreDropPrefix(t *testing.T) {
	store := newTestCacheStore(t)
	ctx := context.Background()

	items := []storage.CacheItem{
		{Key: "res:a", Value: []byte("1")},
		{Key: "res:b", Value: []byte("2")},
		{Key: "emb:a", Value: []byte("3")},
	}
	if err := store.SetWithTTL(ctx, items, 0); err != nil {
		t.Fatalf("Failed to set items: %v", err)
	}

	if err := store.DropPrefix(ctx, "res:"); err != nil {
		t.Fatalf("Failed to drop prefix: %v", err)
	}

	if _, err := store.Get(ctx, "res:a"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Expected res:a dropped, got %v", err)
	}
	if _, err := store.Get(ctx, "res:b"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Expected res:b dropped, got %v", err)
	}
	if _, err := store.Get(ctx, "emb:a"); err != nil {
		t.Fatalf("Expected emb:a to survive, got %v", err)
	}
}

func TestCacheStoreCancelledContext(t *testing.T) {
	store := newTestCacheStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Get(ctx, "res:a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if err := store.SetWithTTL(ctx, nil, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
