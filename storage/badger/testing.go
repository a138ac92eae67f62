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

import "github.com/expatwise/retrieval/storage"

// NewMemoryStores creates in-memory cache and vector stores for testing.
// Returns cacheStore, vectorStore, backend, and error.
// Caller must close both stores and the backend when done.
func NewMemoryStores() (storage.CacheStore, storage.VectorStore, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	cacheStore, err := NewCacheStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	vectorStore, err := NewVectorStore(backend)
	if err != nil {
		cacheStore.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return cacheStore, vectorStore, backend, nil
}
