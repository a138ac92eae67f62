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


package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRouterRequired is returned when a query router is not provided.
	ErrRouterRequired = errors.New("query router required")

	// ErrCacheRequired is returned when a result cache is not provided.
	ErrCacheRequired = errors.New("result cache required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned when Search is called with a blank query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidLimit is returned when a non-positive result limit is requested.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// ExhaustedError reports that every partition in the routing chain failed.
// It aggregates the per-partition causes in attempt order.
type ExhaustedError struct {
	Query     string
	Attempted []string
	Causes    []error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all partitions exhausted for query (tried %s): %v",
		strings.Join(e.Attempted, ", "), errors.Join(e.Causes...))
}

// Unwrap exposes the per-partition causes to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	return e.Causes
}

// InitError reports that the default partition could not be initialized.
// Unlike a transient partition failure there is nothing left to fall back
// to, so this is fatal for the search.
type InitError struct {
	Partition string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("partition %q initialization failed: %v", e.Partition, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
