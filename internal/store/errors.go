package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrSessionNotFound indicates that the requested study session does
	// not exist in the store.
	ErrSessionNotFound = fmt.Errorf("%w: study session", ErrNotFound)

	// ErrReviewNotFound indicates that no matching review exists in the
	// store. In particular, it is returned when a retention forecast is
	// requested for a topic that has never been reviewed.
	ErrReviewNotFound = fmt.Errorf("%w: review", ErrNotFound)

	// ErrTopicNotFound indicates that the requested topic does not exist.
	ErrTopicNotFound = fmt.Errorf("%w: topic", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
