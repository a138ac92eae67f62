// Package badger implements the storage interfaces on BadgerDB.
//
// The cache store maps TTL expiry onto badger-native entry TTLs and keeps
// the recency index as two key families: score-ordered keys (big-endian
// encoded so lexicographic iteration is oldest-first) and per-member
// reverse-lookup keys. The vector store keeps partition metadata and
// documents under per-partition key prefixes and answers similarity
// queries with a brute-force cosine scan.
package badger
