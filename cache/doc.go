// Package cache implements a semantic result cache for search queries.
//
// Each cached query is stored as two TTL-bound records in a
// storage.CacheStore: the serialized result payload, fetched on exact
// matches of the normalized query text, and the query embedding, scanned
// for cosine-similarity matches when the exact lookup misses. Both records
// are written in one atomic batch.
//
// Capacity is bounded by an approximate LRU: every hit and store refreshes
// the entry's position in a recency index, and overflow evicts from the
// oldest end. The cache never propagates backend errors; reads degrade to
// misses and writes report success as a boolean.
package cache
