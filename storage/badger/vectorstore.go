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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/storage"
	"golang.org/x/sync/singleflight"
)

// VectorStore implements storage.VectorStore on a BadgerDB backend.
// Partitions are key prefixes; similarity search is a brute-force cosine
// scan over the partition's documents.
type VectorStore struct {
	backend *Backend
	creates singleflight.Group
	handles sync.Map // partition name -> *core.PartitionInfo
	logger  *slog.Logger
}

var _ storage.VectorStore = (*VectorStore)(nil)

// VectorStoreOption configures a VectorStore.
type VectorStoreOption func(*VectorStore)

// WithVectorStoreLogger sets a custom logger.
// Default is slog.Default().
func WithVectorStoreLogger(logger *slog.Logger) VectorStoreOption {
	return func(s *VectorStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewVectorStore creates a vector store on the given backend.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(backend *Backend, opts ...VectorStoreOption) (storage.VectorStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	s := &VectorStore{
		backend: backend,
		logger:  slog.Default().With("component", "badger-vectorstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SearchPartition returns up to limit documents ranked by cosine similarity
// to the query vector, highest first.
func (s *VectorStore) SearchPartition(ctx context.Context, name string, vector []float32, limit int, filters map[string]string) ([]*core.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, fmt.Errorf("%w: %s: backend closed", storage.ErrPartitionUnavailable, name)
	}

	exists, err := s.HasPartition(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrPartitionNotFound, name)
	}

	var results []*core.ScoredDocument
	err = s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentPrefix(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: partition %s: %w", storage.ErrMalformedRecord, name, err)
			}
			if doc == nil || len(doc.Vector) == 0 {
				continue
			}
			if !matchesFilters(doc, filters) {
				continue
			}

			results = append(results, &core.ScoredDocument{
				Document: doc,
				Score:    cosineSimilarity(vector, doc.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.ScoredDocument) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// HasPartition reports whether the named partition is registered.
func (s *VectorStore) HasPartition(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := s.handles.Load(name); ok {
		return true, nil
	}

	exists := false
	err := s.backend.View(func(tx *badger.Txn) error {
		_, err := tx.Get(makePartitionInfoKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetOrCreatePartition returns the named partition, registering it first if
// needed. Concurrent first-use calls for the same name collapse into one
// registration via singleflight.
func (s *VectorStore) GetOrCreatePartition(ctx context.Context, name string) (*core.PartitionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", storage.ErrPartitionNotFound)
	}
	if cached, ok := s.handles.Load(name); ok {
		return cached.(*core.PartitionInfo), nil
	}

	v, err, _ := s.creates.Do(name, func() (any, error) {
		var info *core.PartitionInfo
		err := s.backend.Update(func(tx *badger.Txn) error {
			key := makePartitionInfoKey(name)
			item, err := tx.Get(key)
			if err == nil {
				return item.Value(func(val []byte) error {
					var err error
					info, err = storage.UnmarshalPartitionInfo(val)
					return err
				})
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			info = &core.PartitionInfo{Name: name, CreatedAt: time.Now().UTC()}
			return tx.Set(key, storage.MarshalPartitionInfo(info))
		})
		if err != nil {
			return nil, err
		}
		return info, nil
	})
	if err != nil {
		return nil, err
	}

	info := v.(*core.PartitionInfo)
	s.handles.Store(name, info)
	return info, nil
}

// UpsertDocuments stores documents in the named partition, creating it if
// needed.
func (s *VectorStore) UpsertDocuments(ctx context.Context, name string, docs ...*core.Document) ([]*core.Document, error) {
	if _, err := s.GetOrCreatePartition(ctx, name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
		if doc.Id == 0 {
			doc.Id = core.IDFromContent(doc.Content)
		}
		if doc.InsertedAt.IsZero() {
			doc.InsertedAt = now
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = now
		}
	}

	err := s.backend.Update(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := tx.Set(makeDocumentKey(name, doc.Id), storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ListPartitions returns every registered partition.
func (s *VectorStore) ListPartitions(ctx context.Context) ([]*core.PartitionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var infos []*core.PartitionInfo
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(partitionInfoPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var info *core.PartitionInfo
			err := iter.Item().Value(func(val []byte) error {
				var err error
				info, err = storage.UnmarshalPartitionInfo(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrMalformedRecord, err)
			}
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// IterateDocuments visits every document in the named partition.
func (s *VectorStore) IterateDocuments(ctx context.Context, name string, fn func(doc *core.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := s.HasPartition(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", storage.ErrPartitionNotFound, name)
	}

	return s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentPrefix(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: partition %s: %w", storage.ErrMalformedRecord, name, err)
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close is a no-op: the backend owns the database lifecycle.
func (s *VectorStore) Close() error {
	return nil
}

// matchesFilters reports whether the document's metadata matches every
// filter exactly.
func matchesFilters(doc *core.Document, filters map[string]string) bool {
	if len(filters) == 0 {
		return true
	}
	for k, v := range filters {
		if doc.Metadata[k] != v {
			return false
		}
	}
	return true
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// Returns 0 if either vector has zero norm.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
