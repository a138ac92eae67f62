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

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - UpdatedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the document is embedded)
//   - ID (0 means derive from content on store)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if !IsValidTimestamp(doc.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateRouteDecision validates a RouteDecision according to domain rules.
//
// Validation rules:
//   - Partition must not be empty
//   - Confidence must be in [0,1]
//   - Fallbacks must not repeat the primary partition
func ValidateRouteDecision(dec *RouteDecision) error {
	if dec == nil {
		return fmt.Errorf("%w: decision is nil", ErrInvalidRouteDecision)
	}

	if dec.Partition == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRouteDecision, ErrEmptyPartition)
	}

	if dec.Confidence < 0 || dec.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidRouteDecision, ErrConfidenceOutOfRange)
	}

	for _, fb := range dec.Fallbacks {
		if fb == dec.Partition {
			return fmt.Errorf("%w: %w", ErrInvalidRouteDecision, ErrPrimaryInFallbacks)
		}
	}

	return nil
}

// IsValidTimestamp returns true if the timestamp is zero or not in the future.
// A small clock-skew allowance is applied.
func IsValidTimestamp(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}
	return !ts.After(time.Now().Add(time.Minute))
}
