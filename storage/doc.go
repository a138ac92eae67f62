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


// Package storage provides the storage abstraction layer for the retrieval core.
//
// This package defines the two store interfaces the retrieval components
// depend on, decoupled from any particular backend:
//
//   - CacheStore: key-value storage with TTL plus an ordered recency index,
//     consumed by the semantic cache for expiry and approximate-LRU eviction.
//   - VectorStore: named partitions of embedded documents with similarity
//     search, consumed by the search orchestrator.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces rather
// than concrete types:
//
//	store, err := badger.NewVectorStore(backend)  // returns storage.VectorStore
//
// This keeps consumers swappable between backends (BadgerDB, in-memory,
// remote) and lets tests substitute failing doubles without modification.
//
// # Serialization
//
// Stored records are encoded in the MUS binary format. The serializers in
// serialization.go are hand-written: the field order is part of the stored
// format, and keeping the serializers in source makes that contract
// reviewable.
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
