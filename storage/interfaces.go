package storage

import (
	"context"
	"time"

	"github.com/expatwise/retrieval/core"
)

// CacheItem is one key/value pair written to a CacheStore.
type CacheItem struct {
	Key   string
	Value []byte
}

// CacheStore provides key-value storage with TTL plus an ordered recency
// index, used by the semantic cache for expiry and approximate-LRU eviction.
// Implementations must be thread-safe; correctness of the cache relies on
// atomic per-key operations, not on in-process locking.
type CacheStore interface {
	// Get retrieves the value stored under key.
	// Returns ErrKeyNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL writes all items in a single atomic batch, each expiring
	// after ttl. Readers observe either all items or none of them.
	// A ttl of zero means no expiry.
	SetWithTTL(ctx context.Context, items []CacheItem, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Scan visits every live entry whose key starts with prefix.
	// Iteration stops early if fn returns an error.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error

	// RecencyAdd registers member in the recency index with the given score,
	// replacing any previous score for the member.
	RecencyAdd(ctx context.Context, member string, score int64) error

	// RecencyOldest returns up to limit members ordered by ascending score
	// (oldest first).
	RecencyOldest(ctx context.Context, limit int) ([]string, error)

	// RecencyRemove removes members from the recency index.
	RecencyRemove(ctx context.Context, members ...string) error

	// RecencyCount returns the number of members in the recency index.
	RecencyCount(ctx context.Context) (int, error)

	// RecencyClear removes every member from the recency index.
	RecencyClear(ctx context.Context) error

	// DropPrefix removes every entry whose key starts with one of the
	// given prefixes.
	DropPrefix(ctx context.Context, prefixes ...string) error

	// Close closes the store and releases resources.
	Close() error
}

// VectorStore provides named partitions of embedded documents with
// similarity search. Implementations must be thread-safe, and partition
// construction must be idempotent or deduplicated under concurrent
// first-use.
type VectorStore interface {
	// SearchPartition returns up to limit documents from the named
	// partition ranked by similarity to the query vector, highest first.
	// Filters, when non-empty, require exact metadata matches.
	// Returns ErrPartitionNotFound if the partition is not registered.
	SearchPartition(ctx context.Context, name string, vector []float32, limit int, filters map[string]string) ([]*core.ScoredDocument, error)

	// HasPartition reports whether the named partition is registered.
	HasPartition(ctx context.Context, name string) (bool, error)

	// GetOrCreatePartition returns the named partition, registering it
	// first if needed. Concurrent calls for the same name are deduplicated.
	GetOrCreatePartition(ctx context.Context, name string) (*core.PartitionInfo, error)

	// UpsertDocuments stores documents in the named partition, creating it
	// if needed. Documents with ID 0 get a content-derived ID. InsertedAt
	// and UpdatedAt are populated when unset.
	// Returns the documents with IDs and timestamps filled in.
	UpsertDocuments(ctx context.Context, name string, docs ...*core.Document) ([]*core.Document, error)

	// ListPartitions returns every registered partition.
	ListPartitions(ctx context.Context) ([]*core.PartitionInfo, error)

	// IterateDocuments visits every document in the named partition.
	// Iteration stops early if fn returns an error.
	IterateDocuments(ctx context.Context, name string, fn func(doc *core.Document) error) error

	// Close closes the store and releases resources.
	Close() error
}
