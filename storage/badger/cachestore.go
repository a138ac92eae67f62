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
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/expatwise/retrieval/storage"
)

// CacheStore implements storage.CacheStore on a BadgerDB backend.
// Expiry uses badger-native TTL entries; the recency index is a pair of
// key families: score-ordered keys for range queries and member keys for
// reverse lookup.
type CacheStore struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.CacheStore = (*CacheStore)(nil)

// CacheStoreOption configures a CacheStore.
type CacheStoreOption func(*CacheStore)

// WithCacheStoreLogger sets a custom logger.
// Default is slog.Default().
func WithCacheStoreLogger(logger *slog.Logger) CacheStoreOption {
	return func(s *CacheStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCacheStore creates a cache store on the given backend.
//
// Returns storage.CacheStore interface to enforce abstraction.
func NewCacheStore(backend *Backend, opts ...CacheStoreOption) (storage.CacheStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	s := &CacheStore{
		backend: backend,
		logger:  slog.Default().With("component", "badger-cachestore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get retrieves the value stored under key.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKVKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// SetWithTTL writes all items in a single transaction so readers observe
// either all of them or none.
func (s *CacheStore) SetWithTTL(ctx context.Context, items []storage.CacheItem, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.Update(func(tx *badger.Txn) error {
		for _, item := range items {
			entry := badger.NewEntry(makeCacheKVKey(item.Key), item.Value)
			if ttl > 0 {
				entry = entry.WithTTL(ttl)
			}
			if err := tx.SetEntry(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the given keys. Missing keys are not an error.
func (s *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.Update(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(makeCacheKVKey(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Scan visits every live entry whose key starts with prefix.
func (s *CacheStore) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPrefix := makeCacheKVKey(prefix)
	return s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = fullPrefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			// Strip the store prefix, keep the caller's key.
			key := string(item.Key()[len(cacheKVPrefix)+1:])
			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// RecencyAdd registers member with the given score, replacing any previous
// score. The old score key is removed in the same transaction.
func (s *CacheStore) RecencyAdd(ctx context.Context, member string, score int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.Update(func(tx *badger.Txn) error {
		memberKey := makeCacheMemberKey(member)

		item, err := tx.Get(memberKey)
		if err == nil {
			var old []byte
			old, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(old) == 8 {
				oldScore := int64(binary.BigEndian.Uint64(old))
				if err := tx.Delete(makeCacheScoreKey(oldScore, member)); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		scoreBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(scoreBytes, uint64(score))
		if err := tx.Set(memberKey, scoreBytes); err != nil {
			return err
		}
		return tx.Set(makeCacheScoreKey(score, member), nil)
	})
}

// RecencyOldest returns up to limit members ordered by ascending score.
func (s *CacheStore) RecencyOldest(ctx context.Context, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	var members []string
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheScorePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(members) < limit; iter.Next() {
			member := memberFromScoreKey(iter.Item().Key())
			if member != "" {
				members = append(members, member)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// RecencyRemove removes members from the recency index.
func (s *CacheStore) RecencyRemove(ctx context.Context, members ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.Update(func(tx *badger.Txn) error {
		for _, member := range members {
			memberKey := makeCacheMemberKey(member)
			item, err := tx.Get(memberKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			old, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(old) == 8 {
				score := int64(binary.BigEndian.Uint64(old))
				if err := tx.Delete(makeCacheScoreKey(score, member)); err != nil {
					return err
				}
			}
			if err := tx.Delete(memberKey); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecencyCount returns the number of members in the recency index.
func (s *CacheStore) RecencyCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheMemberPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecencyClear removes every member from the recency index.
func (s *CacheStore) RecencyClear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.backend.DropPrefix(
		[]byte(cacheScorePrefix+":"),
		[]byte(cacheMemberPrefix+":"),
	)
}

// DropPrefix removes every entry whose key starts with one of the prefixes.
func (s *CacheStore) DropPrefix(ctx context.Context, prefixes ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := make([][]byte, 0, len(prefixes))
	for _, p := range prefixes {
		full = append(full, makeCacheKVKey(p))
	}
	return s.backend.DropPrefix(full...)
}

// Close is a no-op: the backend owns the database lifecycle.
func (s *CacheStore) Close() error {
	return nil
}
