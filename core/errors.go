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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidRouteDecision indicates a RouteDecision failed validation.
	ErrInvalidRouteDecision = errors.New("invalid route decision")

	// ErrEmptyPartition indicates a partition name is empty.
	ErrEmptyPartition = errors.New("partition name cannot be empty")

	// ErrConfidenceOutOfRange indicates a confidence value outside [0,1].
	ErrConfidenceOutOfRange = errors.New("confidence must be between 0 and 1")

	// ErrPrimaryInFallbacks indicates the fallback list repeats the primary partition.
	ErrPrimaryInFallbacks = errors.New("fallbacks cannot contain the primary partition")
)
