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


package ai

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedding provider could not produce
	// a vector. It is fatal for the current request and is not retried by
	// the retrieval core.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrRerankFailed indicates the reranker could not reorder the results.
	// Callers degrade to the original ordering.
	ErrRerankFailed = errors.New("rerank failed")
)
