package router

import "errors"

var (
	// ErrNoDomains is returned when a router is configured with an empty
	// domain table.
	ErrNoDomains = errors.New("router: domain table is empty")

	// ErrEmptyDefaultPartition is returned when the default partition is
	// set to an empty string.
	ErrEmptyDefaultPartition = errors.New("router: default partition is empty")

	// ErrInvalidThresholds is returned when the confidence tier boundaries
	// are out of range or inverted.
	ErrInvalidThresholds = errors.New("router: invalid confidence thresholds")
)
