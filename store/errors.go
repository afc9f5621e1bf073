package store

import "errors"

// Store errors (spec.md §7). The first four are the transient kinds
// IsTransient reports: Reap propagates them to the caller's own
// transaction; Retry absorbs them and reports false; Abort propagates
// them. ErrBadRequest and ErrInternal are not transient.
var (
	ErrContention        = errors.New("store: contention")
	ErrTimeout           = errors.New("store: timeout")
	ErrTransactionFailed = errors.New("store: transaction failed")
	ErrCancelled         = errors.New("store: cancelled")
	ErrBadRequest        = errors.New("store: bad request")
	ErrInternal          = errors.New("store: internal error")

	// ErrNotFound is returned by Get (and by the TaskRequest lookup
	// collaborator) when the key/identity does not exist.
	ErrNotFound = errors.New("store: not found")
)

// IsTransient reports whether err is one of the transient store failure
// kinds that Retry is expected to absorb rather than surface.
func IsTransient(err error) bool {
	switch {
	case errors.Is(err, ErrContention),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrTransactionFailed),
		errors.Is(err, ErrCancelled):
		return true
	default:
		return false
	}
}
