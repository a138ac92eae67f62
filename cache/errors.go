package cache

import "errors"

var (
	// ErrStoreRequired is returned when a cache is created without a
	// backing store.
	ErrStoreRequired = errors.New("cache: store is required")

	// ErrInvalidThreshold is returned when the similarity threshold is
	// outside (0, 1].
	ErrInvalidThreshold = errors.New("cache: similarity threshold must be in (0, 1]")

	// ErrInvalidTTL is returned when the default TTL is not positive.
	ErrInvalidTTL = errors.New("cache: default TTL must be positive")

	// ErrInvalidMaxEntries is returned when the capacity bound is not
	// positive.
	ErrInvalidMaxEntries = errors.New("cache: max entries must be positive")
)
