// Package reindex rebuilds document embeddings across knowledge partitions,
// typically after switching or upgrading the embedding model.
//
// Documents are processed in batches on a bounded worker pool, with
// progress reporting, retry with exponential backoff around embedding
// calls, and vector normalization. After a successful run the semantic
// cache is cleared, since cached results were produced under the old
// embedding space.
package reindex
