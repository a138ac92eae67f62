// Package search orchestrates the retrieval pipeline for knowledge queries.
//
// A Search call runs five stages:
//
//  1. Route the query to a primary partition with a fallback chain.
//  2. Embed the query and consult the semantic cache.
//  3. Search partitions in chain order until one yields documents,
//     registering partitions on first use.
//  4. Refine the hits: pricing queries get deterministic conflict
//     resolution, other queries are reranked by an LLM when configured.
//  5. Cache the serialized result for future lookups.
//
// Failure handling is asymmetric by design: embedding failures abort the
// search, partition failures fall through the chain (exhausting the whole
// chain is an *ExhaustedError), and cache failures are invisible to the
// caller. Results served from a fallback partition or without reranking
// are marked Degraded.
package search
