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


package reindex

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of documents embedded per batch
	BatchSize int

	// Workers is the number of batches processed concurrently
	Workers int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      64,
		Workers:        4,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// CacheInvalidator clears cached search results that became stale when
// the embedding space changed. *cache.SemanticCache satisfies this.
type CacheInvalidator interface {
	Clear(ctx context.Context) error
}

// Reindexer orchestrates re-embedding of documents across partitions.
type Reindexer struct {
	store       storage.VectorStore
	embedder    ai.Embedder
	invalidator CacheInvalidator
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
}

// NewReindexer creates a new reindexer.
// invalidator: cleared after a successful run, may be nil
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(store storage.VectorStore, embedder ai.Embedder, invalidator CacheInvalidator, config *Config, progress io.Writer) (*Reindexer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		store:       store,
		embedder:    embedder,
		invalidator: invalidator,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(store, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// batchJob is one unit of work for the pool.
type batchJob struct {
	partition string
	docs      []*core.Document
}

// Run re-embeds every document in the given partitions, or in all
// registered partitions when none are named. The semantic cache is cleared
// after a successful run.
func (r *Reindexer) Run(ctx context.Context, partitions ...string) error {
	if len(partitions) == 0 {
		infos, err := r.store.ListPartitions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list partitions: %w", err)
		}
		for _, info := range infos {
			partitions = append(partitions, info.Name)
		}
	}

	jobs, total, err := r.collectBatches(ctx, partitions)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in %d partitions\n", len(partitions))
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents across %d partitions (batch size: %d, workers: %d)\n",
		total, len(partitions), r.config.BatchSize, r.config.Workers)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	if err := r.processBatches(ctx, jobs, tracker); err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	if r.invalidator != nil {
		if err := r.invalidator.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear semantic cache: %w", err)
		}
		fmt.Fprintf(r.progress, "Semantic cache cleared\n")
	}

	return nil
}

// collectBatches loads each partition's documents and splits them into
// pool-sized jobs.
func (r *Reindexer) collectBatches(ctx context.Context, partitions []string) ([]batchJob, int, error) {
	var (
		jobs  []batchJob
		total int
	)

	for _, partition := range partitions {
		var batch []*core.Document
		err := r.store.IterateDocuments(ctx, partition, func(doc *core.Document) error {
			total++
			batch = append(batch, doc)
			if len(batch) == r.config.BatchSize {
				jobs = append(jobs, batchJob{partition: partition, docs: batch})
				batch = nil
			}
			return nil
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read partition %s: %w", partition, err)
		}
		if len(batch) > 0 {
			jobs = append(jobs, batchJob{partition: partition, docs: batch})
		}
	}

	return jobs, total, nil
}

// processBatches runs the jobs on a bounded worker pool. The first batch
// failure stops new work and is returned after in-flight batches drain.
func (r *Reindexer) processBatches(ctx context.Context, jobs []batchJob, tracker *ProgressTracker) error {
	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for _, job := range jobs {
		if failed() || ctx.Err() != nil {
			break
		}

		job := job
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if failed() || ctx.Err() != nil {
				return
			}
			if err := r.processor.Process(ctx, job.partition, job.docs); err != nil {
				fail(err)
				return
			}
			tracker.Increment(len(job.docs))
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit batch: %w", err))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
