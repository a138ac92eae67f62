package ai

import (
	"context"

	"github.com/expatwise/retrieval/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use and must return
// vectors of a fixed dimension across calls within a deployment.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping ErrEmbeddingFailed if generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error wrapping ErrEmbeddingFailed if any generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker reorders search results using a secondary relevance model.
// Implementations must be thread-safe for concurrent use.
// The orchestrator functions with this collaborator absent or disabled.
type Reranker interface {
	// Rerank returns the documents reordered by relevance to the query,
	// with updated scores, truncated to topK when topK > 0.
	Rerank(ctx context.Context, query string, docs []*core.ScoredDocument, topK int) ([]*core.ScoredDocument, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Reranker instances, ensuring they share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Reranker returns the result reranking service.
	// The returned Reranker is safe for concurrent use.
	Reranker() Reranker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
