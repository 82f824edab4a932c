package sync

import "errors"

var (
	// ErrInvalidStoreState is returned when an operation is attempted on a
	// store whose lifecycle state does not permit it (e.g. syncing an
	// unparsed store). No partial mutation is performed.
	ErrInvalidStoreState = errors.New("store is not in a valid state for this operation")

	// ErrMissingFile is returned when a sync targets a store whose backing
	// file location is absent and SkipMissing was not requested.
	ErrMissingFile = errors.New("store has no backing file")
)
