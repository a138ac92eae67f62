package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
)

// BatchProcessor regenerates embeddings for batches of documents and
// writes them back to their partition.
type BatchProcessor struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.VectorStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds a batch of documents and upserts them into the named
// partition. Vectors are normalized after embedding to ensure
// compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, partition string, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(embeddings))
	}

	now := time.Now().UTC()
	for i := range docs {
		docs[i].Vector = NormalizeVector(embeddings[i])
		docs[i].UpdatedAt = now
	}

	_, err = bp.store.UpsertDocuments(ctx, partition, docs...)
	if err != nil {
		return fmt.Errorf("failed to update documents in %s: %w", partition, err)
	}

	return nil
}
