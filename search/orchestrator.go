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


package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
)

const defaultSearchLimit = 10

// QueryRouter classifies queries into partitions.
// *router.Router satisfies this interface.
type QueryRouter interface {
	Route(query string) core.RouteDecision
	DefaultPartition() string
}

// ResultCache caches serialized search results.
// *cache.SemanticCache satisfies this interface.
type ResultCache interface {
	Lookup(ctx context.Context, query string, embedding []float32) (*core.CacheEntry, core.CacheHit)
	Store(ctx context.Context, query string, embedding []float32, payload []byte, ttl time.Duration) bool
	Stats(ctx context.Context) (core.CacheStats, error)
	Clear(ctx context.Context) error
}

// Orchestrator runs the full retrieval pipeline for one query: routing,
// cache lookup, partition search with fallback, result refinement, and
// cache write-back.
type Orchestrator struct {
	router   QueryRouter
	cache    ResultCache
	store    storage.VectorStore
	embedder ai.Embedder
	reranker ai.Reranker
	limit    int
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithDefaultLimit sets the result limit used when a search does not
// request one. Default is 10.
func WithDefaultLimit(limit int) Option {
	return func(o *Orchestrator) error {
		if limit <= 0 {
			return ErrInvalidLimit
		}
		o.limit = limit
		return nil
	}
}

// WithCacheTTL sets the expiry for cached results. Zero defers to the
// cache's own default.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) error {
		o.cacheTTL = ttl
		return nil
	}
}

// NewOrchestrator creates a search orchestrator.
func NewOrchestrator(
	queryRouter QueryRouter,
	resultCache ResultCache,
	store storage.VectorStore,
	provider ai.Provider,
	opts ...Option,
) (*Orchestrator, error) {
	if queryRouter == nil {
		return nil, ErrRouterRequired
	}
	if resultCache == nil {
		return nil, ErrCacheRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	o := &Orchestrator{
		router:   queryRouter,
		cache:    resultCache,
		store:    store,
		embedder: provider.Embedder(),
		reranker: provider.Reranker(),
		limit:    defaultSearchLimit,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// searchRequest carries per-call parameters.
type searchRequest struct {
	limit     int
	filters   map[string]string
	embedding []float32
	monitor   Monitor
}

// SearchOption configures a single Search call.
type SearchOption func(*searchRequest)

// WithLimit overrides the result limit for one search.
func WithLimit(limit int) SearchOption {
	return func(r *searchRequest) {
		r.limit = limit
	}
}

// WithFilters restricts results to documents whose metadata matches every
// given key/value pair exactly.
func WithFilters(filters map[string]string) SearchOption {
	return func(r *searchRequest) {
		r.filters = filters
	}
}

// WithEmbedding supplies a precomputed query embedding, skipping the
// embedding call.
func WithEmbedding(embedding []float32) SearchOption {
	return func(r *searchRequest) {
		r.embedding = embedding
	}
}

// WithMonitor attaches a pipeline observer to one search.
func WithMonitor(monitor Monitor) SearchOption {
	return func(r *searchRequest) {
		if monitor != nil {
			r.monitor = monitor
		}
	}
}

// Search answers a query from the knowledge base. The pipeline routes the
// query to a partition, consults the semantic cache, searches the
// partition chain until one yields documents, refines the results, and
// caches the outcome.
//
// Embedding failures are fatal. Partition failures trigger fallback; only
// when every partition in the chain fails does Search return an
// *ExhaustedError. Cache failures are never fatal.
func (o *Orchestrator) Search(ctx context.Context, query string, opts ...SearchOption) (*core.SearchResult, error) {
	req := searchRequest{limit: o.limit, monitor: &noopMonitor{}}
	for _, opt := range opts {
		opt(&req)
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if req.limit <= 0 {
		return nil, ErrInvalidLimit
	}

	req.monitor.Start(query)

	decision := o.router.Route(query)
	req.monitor.AfterRoute(decision)

	embedding := req.embedding
	if len(embedding) == 0 {
		var err error
		embedding, err = o.embedder.EmbedText(ctx, query)
		if err != nil {
			o.logger.Error("query embedding failed", "query", query, "err", err)
			return nil, fmt.Errorf("embedding query: %w", err)
		}
	}
	req.monitor.AfterEmbedding(len(embedding))

	if entry, hit := o.cache.Lookup(ctx, query, embedding); hit != core.CacheHitNone {
		result, err := storage.UnmarshalSearchResult(entry.Payload)
		if err == nil {
			result.CacheHit = hit
			req.monitor.AfterCacheLookup(hit)
			req.monitor.Finish(result)
			return result, nil
		}
		o.logger.Warn("cached payload undecodable, searching live", "err", err)
	}
	req.monitor.AfterCacheLookup(core.CacheHitNone)

	docs, partition, err := o.searchChain(ctx, query, &decision, embedding, &req)
	if err != nil {
		return nil, err
	}

	result := &core.SearchResult{
		PartitionUsed: partition,
		CacheHit:      core.CacheHitNone,
		Degraded:      partition != decision.Partition,
	}

	if len(docs) > 0 {
		docs = o.refine(ctx, query, decision.Kind, docs, &req, result)
	}
	if len(docs) > req.limit {
		docs = docs[:req.limit]
	}
	result.Documents = docs

	// Empty results are not cached: a later ingest should become visible
	// without waiting out a TTL.
	if len(result.Documents) > 0 {
		if ok := o.cache.Store(ctx, query, embedding, storage.MarshalSearchResult(result), o.cacheTTL); !ok {
			o.logger.Debug("search result not cached", "query", query)
		}
	}

	req.monitor.Finish(result)
	return result, nil
}

// searchChain tries each partition in the routing chain until one yields
// documents. Transient partition failures and empty partitions move on to
// the next fallback. An initialization failure queues the default
// partition as a terminal retry; if the default itself cannot initialize,
// the *InitError is fatal.
//
// Returns the documents and the partition that served them. A chain where
// at least one partition answered with zero documents is an empty result,
// not an error; a chain where every attempt failed is an *ExhaustedError.
func (o *Orchestrator) searchChain(
	ctx context.Context,
	query string,
	decision *core.RouteDecision,
	embedding []float32,
	req *searchRequest,
) (docs []*core.ScoredDocument, partition string, err error) {
	chain := decision.Chain()

	var (
		attempted      []string
		causes         []error
		emptyPartition string
		sawEmpty       bool
	)

	for i := 0; i < len(chain); i++ {
		name := chain[i]
		attempted = append(attempted, name)

		docs, err := o.searchPartition(ctx, name, embedding, req)
		req.monitor.AfterPartitionSearch(name, len(docs), err)

		if err != nil {
			var initErr *InitError
			if errors.As(err, &initErr) {
				if name == o.router.DefaultPartition() {
					return nil, "", err
				}
				// Retry on the default partition once the chain runs out.
				if !slices.Contains(chain, o.router.DefaultPartition()) {
					chain = append(chain, o.router.DefaultPartition())
				}
			}
			o.logger.Warn("partition search failed, trying next", "partition", name, "err", err)
			causes = append(causes, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if len(docs) == 0 {
			if !sawEmpty {
				emptyPartition = name
				sawEmpty = true
			}
			continue
		}
		return docs, name, nil
	}

	if sawEmpty {
		return nil, emptyPartition, nil
	}
	return nil, "", &ExhaustedError{Query: query, Attempted: attempted, Causes: causes}
}

// searchPartition runs one partition search, registering the partition on
// first use.
func (o *Orchestrator) searchPartition(ctx context.Context, name string, embedding []float32, req *searchRequest) ([]*core.ScoredDocument, error) {
	docs, err := o.store.SearchPartition(ctx, name, embedding, req.limit, req.filters)
	if err == nil {
		return docs, nil
	}
	if !errors.Is(err, storage.ErrPartitionNotFound) {
		return nil, err
	}

	if _, initErr := o.store.GetOrCreatePartition(ctx, name); initErr != nil {
		return nil, &InitError{Partition: name, Err: initErr}
	}
	return o.store.SearchPartition(ctx, name, embedding, req.limit, req.filters)
}

// refine post-processes retrieved documents. Pricing queries get
// deterministic conflict resolution instead of reranking; everything else
// is reranked when a reranker is configured. A rerank failure keeps the
// retrieval order and marks the result degraded.
func (o *Orchestrator) refine(
	ctx context.Context,
	query string,
	kind core.QueryKind,
	docs []*core.ScoredDocument,
	req *searchRequest,
	result *core.SearchResult,
) []*core.ScoredDocument {
	if kind == core.KindPricing {
		return resolvePricingConflicts(docs)
	}
	if o.reranker == nil {
		return docs
	}

	reranked, err := o.reranker.Rerank(ctx, query, docs, req.limit)
	if err != nil {
		o.logger.Warn("rerank failed, keeping retrieval order", "err", err)
		result.Degraded = true
		return docs
	}
	req.monitor.AfterRerank(len(reranked))
	return reranked
}

// Route exposes the routing decision for a query without searching.
func (o *Orchestrator) Route(query string) core.RouteDecision {
	return o.router.Route(query)
}

// CacheStats returns the semantic cache's current statistics.
func (o *Orchestrator) CacheStats(ctx context.Context) (core.CacheStats, error) {
	return o.cache.Stats(ctx)
}

// ClearCache drops every cached search result.
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	return o.cache.Clear(ctx)
}
