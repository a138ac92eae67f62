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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	retrieval "github.com/expatwise/retrieval"
	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/ai/openai"
	"github.com/expatwise/retrieval/cache"
	"github.com/expatwise/retrieval/reindex"
	"github.com/expatwise/retrieval/router"
	"github.com/expatwise/retrieval/search"
	badgerstore "github.com/expatwise/retrieval/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "retrieval",
		Usage: "Knowledge-base retrieval for expat business advisory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Answer a query from the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "reranker-model",
						Usage: "Reranker model name",
						Value: "qwen2.5:3b",
					},
					&cli.BoolFlag{
						Name:  "no-rerank",
						Usage: "Disable LLM reranking",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:      "route",
				Usage:     "Show the routing decision for a query without searching",
				ArgsUsage: "<query>",
				Action:    routeCommand,
			},
			{
				Name:   "cache-stats",
				Usage:  "Show semantic cache statistics",
				Action: cacheStatsCommand,
				Flags:  dbOnlyFlags(),
			},
			{
				Name:   "cache-clear",
				Usage:  "Drop every cached search result",
				Action: cacheClearCommand,
				Flags:  dbOnlyFlags(),
			},
			{
				Name:      "reindex",
				Usage:     "Re-embed documents and clear the semantic cache",
				ArgsUsage: "[partition ...]",
				Action:    reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed in each batch",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches processed concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbOnlyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRerankerModel(c.String("reranker-model")),
		ai.WithRerankerEnabled(!c.Bool("no-rerank")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	svc, err := retrieval.NewService(c.String("db"), retrieval.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	result, err := svc.Search(ctx, query, search.WithLimit(c.Int("limit")))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Partition: %s\n", result.PartitionUsed)
	fmt.Printf("Cache: %s\n", result.CacheHit)
	if result.Degraded {
		fmt.Println("Degraded: yes")
	}
	fmt.Println()

	if len(result.Documents) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, doc := range result.Documents {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, doc.Score, doc.Document.Content)
		if source, ok := doc.Document.Metadata["source"]; ok {
			fmt.Printf("    source: %s\n", source)
		}
	}
	return nil
}

func routeCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	queryRouter, err := router.NewRouter()
	if err != nil {
		return err
	}

	decision := queryRouter.Route(query)
	fmt.Printf("Partition:  %s\n", decision.Partition)
	fmt.Printf("Confidence: %.2f\n", decision.Confidence)
	fmt.Printf("Kind:       %s\n", decision.Kind)
	if len(decision.Fallbacks) > 0 {
		fmt.Printf("Fallbacks:  %s\n", strings.Join(decision.Fallbacks, ", "))
	}
	return nil
}

func openCache(dbPath string) (*cache.SemanticCache, *badgerstore.Backend, error) {
	backend, err := badgerstore.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	cacheStore, err := badgerstore.NewCacheStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	semanticCache, err := cache.New(cacheStore)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return semanticCache, backend, nil
}

func cacheStatsCommand(c *cli.Context) error {
	semanticCache, backend, err := openCache(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()

	stats, err := semanticCache.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	fmt.Printf("Entries:     %d / %d (%.1f%%)\n", stats.Size, stats.MaxSize, stats.Utilization*100)
	fmt.Printf("Threshold:   %.2f\n", stats.SimilarityThreshold)
	fmt.Printf("Default TTL: %s\n", stats.DefaultTTL)
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	semanticCache, backend, err := openCache(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := semanticCache.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("Semantic cache cleared.")
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badgerstore.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	vectorStore, err := badgerstore.NewVectorStore(backend)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}

	cacheStore, err := badgerstore.NewCacheStore(backend)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}
	semanticCache, err := cache.New(cacheStore)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		// Reranking is not involved in reindexing.
		ai.WithRerankerEnabled(false),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := reindex.NewReindexer(vectorStore, embedder, semanticCache, config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx, c.Args().Slice()...); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
