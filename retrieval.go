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


// Package retrieval wires the knowledge-base retrieval stack into a single
// service: a badger-backed vector store and semantic cache, an OpenAI-
// compatible AI provider, the query router, and the search orchestrator.
package retrieval

import (
	"context"
	"io"
	"log/slog"

	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/ai/openai"
	"github.com/expatwise/retrieval/cache"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/reindex"
	"github.com/expatwise/retrieval/router"
	"github.com/expatwise/retrieval/search"
	"github.com/expatwise/retrieval/storage"
	badgerstore "github.com/expatwise/retrieval/storage/badger"
)

// Service is the assembled retrieval stack over one badger database.
type Service struct {
	backend      *badgerstore.Backend
	cacheStore   storage.CacheStore
	vectorStore  storage.VectorStore
	provider     ai.Provider
	router       *router.Router
	cache        *cache.SemanticCache
	orchestrator *search.Orchestrator
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig   *ai.Config
	inMemory   bool
	routerOpts []router.Option
	cacheOpts  []cache.Option
	searchOpts []search.Option
	logger     *slog.Logger
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the backing store in memory, without files.
// Intended for tests and experiments.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithRouterOptions forwards options to the query router.
func WithRouterOptions(opts ...router.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// WithCacheOptions forwards options to the semantic cache.
func WithCacheOptions(opts ...cache.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithSearchOptions forwards options to the search orchestrator.
func WithSearchOptions(opts ...search.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithServiceLogger sets the logger used by the service and its components.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewService opens the database at filePath and assembles the retrieval
// stack on top of it.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badgerstore.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	cacheStore, err := badgerstore.NewCacheStore(backend, badgerstore.WithCacheStoreLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectorStore, err := badgerstore.NewVectorStore(backend, badgerstore.WithVectorStoreLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		vectorStore.Close()
		backend.Close()
		return nil, err
	}

	return assemble(backend, cacheStore, vectorStore, provider, options)
}

// NewServiceWithProvider assembles the stack with a caller-supplied AI
// provider, typically a mock in tests.
func NewServiceWithProvider(filePath string, provider ai.Provider, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	cacheStore, err := badgerstore.NewCacheStore(backend, badgerstore.WithCacheStoreLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectorStore, err := badgerstore.NewVectorStore(backend, badgerstore.WithVectorStoreLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	return assemble(backend, cacheStore, vectorStore, provider, options)
}

func assemble(
	backend *badgerstore.Backend,
	cacheStore storage.CacheStore,
	vectorStore storage.VectorStore,
	provider ai.Provider,
	options *serviceOptions,
) (*Service, error) {
	queryRouter, err := router.NewRouter(append([]router.Option{router.WithLogger(options.logger)}, options.routerOpts...)...)
	if err != nil {
		provider.Close()
		vectorStore.Close()
		backend.Close()
		return nil, err
	}

	semanticCache, err := cache.New(cacheStore, append([]cache.Option{cache.WithLogger(options.logger)}, options.cacheOpts...)...)
	if err != nil {
		provider.Close()
		vectorStore.Close()
		backend.Close()
		return nil, err
	}

	orchestrator, err := search.NewOrchestrator(queryRouter, semanticCache, vectorStore, provider,
		append([]search.Option{search.WithLogger(options.logger)}, options.searchOpts...)...)
	if err != nil {
		provider.Close()
		vectorStore.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:      backend,
		cacheStore:   cacheStore,
		vectorStore:  vectorStore,
		provider:     provider,
		router:       queryRouter,
		cache:        semanticCache,
		orchestrator: orchestrator,
		logger:       options.logger,
	}, nil
}

// Search answers a query through the full pipeline.
func (s *Service) Search(ctx context.Context, query string, opts ...search.SearchOption) (*core.SearchResult, error) {
	return s.orchestrator.Search(ctx, query, opts...)
}

// Route returns the routing decision for a query without searching.
func (s *Service) Route(query string) core.RouteDecision {
	return s.orchestrator.Route(query)
}

// CacheStats returns the semantic cache's current statistics.
func (s *Service) CacheStats(ctx context.Context) (core.CacheStats, error) {
	return s.orchestrator.CacheStats(ctx)
}

// ClearCache drops every cached search result.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.orchestrator.ClearCache(ctx)
}

// VectorStore exposes the underlying document store for ingestion tooling.
func (s *Service) VectorStore() storage.VectorStore {
	return s.vectorStore
}

// Provider exposes the AI provider.
func (s *Service) Provider() ai.Provider {
	return s.provider
}

// NewReindexer builds a reindexer bound to this service's store, embedder,
// and cache.
func (s *Service) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(s.vectorStore, s.provider.Embedder(), s.cache, config, progress)
}

// Close releases the service's resources, AI provider first, then the
// stores and the backend.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.vectorStore.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := s.cacheStore.Close(); err != nil {
		s.logger.Error("error closing cache store", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
