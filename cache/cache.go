// Copyright 2026 Expatwise
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
)

const (
	defaultSimilarityThreshold = 0.95
	defaultTTL                 = time.Hour
	defaultMaxEntries          = 10000

	// Key prefixes for the two records kept per cached query: the result
	// payload and the query embedding. Splitting them keeps the semantic
	// scan from deserializing payloads it will discard.
	resultPrefix    = "res:"
	embeddingPrefix = "emb:"
)

// SemanticCache caches search results keyed by normalized query text, with
// a secondary lookup path that matches query embeddings by cosine
// similarity. The cache fails open: backend errors surface as misses on
// read and as a false return on write, never as errors to the caller.
type SemanticCache struct {
	store               storage.CacheStore
	similarityThreshold float64
	ttl                 time.Duration
	maxEntries          int
	logger              *slog.Logger
}

// Option configures a SemanticCache.
type Option func(*SemanticCache) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *SemanticCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithSimilarityThreshold sets the minimum cosine similarity for a
// semantic hit. Must be in (0, 1]. Default is 0.95.
func WithSimilarityThreshold(threshold float64) Option {
	return func(c *SemanticCache) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		c.similarityThreshold = threshold
		return nil
	}
}

// WithDefaultTTL sets the expiry applied when Store is called with a zero
// ttl. Default is one hour.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *SemanticCache) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithMaxEntries sets the capacity bound enforced by eviction.
// Default is 10000.
func WithMaxEntries(max int) Option {
	return func(c *SemanticCache) error {
		if max <= 0 {
			return ErrInvalidMaxEntries
		}
		c.maxEntries = max
		return nil
	}
}

// New creates a semantic cache backed by the given store.
func New(store storage.CacheStore, opts ...Option) (*SemanticCache, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &SemanticCache{
		store:               store,
		similarityThreshold: defaultSimilarityThreshold,
		ttl:                 defaultTTL,
		maxEntries:          defaultMaxEntries,
		logger:              slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Lookup returns the cached entry for a query, trying an exact match on
// the normalized query text first and a cosine-similarity match on the
// embedding second. A nil or empty embedding skips the semantic pass.
// Backend failures are logged and reported as misses.
func (c *SemanticCache) Lookup(ctx context.Context, query string, embedding []float32) (*core.CacheEntry, core.CacheHit) {
	member := memberKey(core.CacheKey(query))

	data, err := c.store.Get(ctx, resultPrefix+member)
	switch {
	case err == nil:
		entry, err := storage.UnmarshalCacheEntry(data)
		if err != nil {
			c.logger.Warn("discarding undecodable cache entry", "member", member, "error", err)
			return nil, core.CacheHitNone
		}
		c.touch(ctx, member)
		return entry, core.CacheHitExact
	case !errors.Is(err, storage.ErrKeyNotFound):
		c.logger.Warn("cache lookup failed, treating as miss", "error", err)
		return nil, core.CacheHitNone
	}

	if len(embedding) == 0 {
		return nil, core.CacheHitNone
	}
	return c.lookupSemantic(ctx, embedding)
}

// lookupSemantic scans stored embeddings for the closest match at or above
// the similarity threshold, then fetches that entry's result record.
func (c *SemanticCache) lookupSemantic(ctx context.Context, embedding []float32) (*core.CacheEntry, core.CacheHit) {
	var (
		bestMember string
		bestScore  float64
	)

	err := c.store.Scan(ctx, embeddingPrefix, func(key string, value []byte) error {
		entry, err := storage.UnmarshalCacheEntry(value)
		if err != nil {
			c.logger.Warn("skipping undecodable cache embedding", "key", key, "error", err)
			return nil
		}
		score := cosineSimilarity(embedding, entry.Vector)
		if score >= c.similarityThreshold && score > bestScore {
			bestMember = strings.TrimPrefix(key, embeddingPrefix)
			bestScore = score
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("cache scan failed, treating as miss", "error", err)
		return nil, core.CacheHitNone
	}
	if bestMember == "" {
		return nil, core.CacheHitNone
	}

	data, err := c.store.Get(ctx, resultPrefix+bestMember)
	if err != nil {
		// The result record expired between the scan and the read.
		return nil, core.CacheHitNone
	}
	entry, err := storage.UnmarshalCacheEntry(data)
	if err != nil {
		c.logger.Warn("discarding undecodable cache entry", "member", bestMember, "error", err)
		return nil, core.CacheHitNone
	}

	c.touch(ctx, bestMember)
	c.logger.Debug("semantic cache hit", "similarity", bestScore, "query", entry.Query)
	return entry, core.CacheHitSemantic
}

// Store caches a search result payload under the query's normalized key.
// A zero ttl uses the configured default. Returns false if the write did
// not take effect; the caller's result is unaffected either way.
func (c *SemanticCache) Store(ctx context.Context, query string, embedding []float32, payload []byte, ttl time.Duration) bool {
	if strings.TrimSpace(query) == "" || len(payload) == 0 {
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	key := core.CacheKey(query)
	member := memberKey(key)
	now := time.Now().UTC()

	// Two records per entry: the payload for exact hits and the embedding
	// for the semantic scan, written atomically so neither is observable
	// without the other.
	resultEntry := &core.CacheEntry{Key: key, Query: query, Payload: payload, CreatedAt: now}
	embeddingEntry := &core.CacheEntry{Key: key, Query: query, Vector: embedding, CreatedAt: now}

	items := []storage.CacheItem{
		{Key: resultPrefix + member, Value: storage.MarshalCacheEntry(resultEntry)},
		{Key: embeddingPrefix + member, Value: storage.MarshalCacheEntry(embeddingEntry)},
	}
	if err := c.store.SetWithTTL(ctx, items, ttl); err != nil {
		c.logger.Warn("cache store failed", "error", err)
		return false
	}

	c.touch(ctx, member)
	c.enforceCapacity(ctx)
	return true
}

// touch refreshes a member's position in the recency index. Failures only
// degrade eviction ordering, so they are logged and ignored.
func (c *SemanticCache) touch(ctx context.Context, member string) {
	if err := c.store.RecencyAdd(ctx, member, time.Now().UnixMicro()); err != nil {
		c.logger.Warn("cache recency update failed", "member", member, "error", err)
	}
}

// enforceCapacity evicts the least recently touched entries until the
// cache is back under its size bound. Eviction is approximate: TTL-expired
// records leave stale index members behind until they age to the front.
func (c *SemanticCache) enforceCapacity(ctx context.Context) {
	count, err := c.store.RecencyCount(ctx)
	if err != nil {
		c.logger.Warn("cache size check failed", "error", err)
		return
	}
	if count <= c.maxEntries {
		return
	}

	members, err := c.store.RecencyOldest(ctx, count-c.maxEntries)
	if err != nil {
		c.logger.Warn("cache eviction scan failed", "error", err)
		return
	}

	for _, member := range members {
		if err := c.store.Delete(ctx, resultPrefix+member, embeddingPrefix+member); err != nil {
			c.logger.Warn("cache eviction delete failed", "member", member, "error", err)
			continue
		}
		if err := c.store.RecencyRemove(ctx, member); err != nil {
			c.logger.Warn("cache eviction index removal failed", "member", member, "error", err)
		}
	}
	c.logger.Debug("evicted cache entries", "count", len(members))
}

// Stats returns a snapshot of the cache's size and configuration.
func (c *SemanticCache) Stats(ctx context.Context) (core.CacheStats, error) {
	count, err := c.store.RecencyCount(ctx)
	if err != nil {
		return core.CacheStats{}, err
	}

	stats := core.CacheStats{
		Size:                count,
		MaxSize:             c.maxEntries,
		SimilarityThreshold: c.similarityThreshold,
		DefaultTTL:          c.ttl,
	}
	if c.maxEntries > 0 {
		stats.Utilization = float64(count) / float64(c.maxEntries)
	}
	return stats, nil
}

// Clear removes every cached entry and resets the recency index.
func (c *SemanticCache) Clear(ctx context.Context) error {
	if err := c.store.DropPrefix(ctx, resultPrefix, embeddingPrefix); err != nil {
		return err
	}
	return c.store.RecencyClear(ctx)
}

// memberKey encodes a cache key ID as the member string shared by the
// result record, the embedding record, and the recency index.
func memberKey(key core.ID) string {
	return strconv.FormatUint(uint64(key), 16)
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
