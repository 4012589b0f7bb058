package store

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrStaleVersion is returned when an optimistic write loses against a concurrent writer.
	ErrStaleVersion = errors.New("store: stale version")
)
