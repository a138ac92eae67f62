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


package storage

import "errors"

var (
	// ErrKeyNotFound is returned when a cache key does not exist or has expired.
	ErrKeyNotFound = errors.New("key not found")

	// ErrPartitionNotFound is returned when a partition is not registered.
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrPartitionUnavailable is returned when a partition exists but cannot
	// be read. The orchestrator treats it as transient and tries fallbacks.
	ErrPartitionUnavailable = errors.New("partition unavailable")

	// ErrMalformedRecord is returned when a stored record cannot be decoded.
	// The orchestrator treats it as transient and tries fallbacks.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrStoreClosed is returned when an operation is attempted on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)
