package dispatch

import (
	"errors"

	"github.com/swarmq/core/store"
)

// ErrorKind classifies a dispatch error for callers that want to react
// differently to transient vs. terminal failures without a long
// errors.Is chain (spec.md §7).
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidEntry
	KindInvalidPriority
	KindInvalidTimestamp
	KindNotFound
	KindContention
	KindTimeout
	KindTransactionFailed
	KindCancelled
)

type kindedError struct {
	kind ErrorKind
	msg  string
}

func (e *kindedError) Error() string { return e.msg }

// Error kinds specific to this package, plus sentinels mirroring the
// transient store failures Reap and Abort propagate verbatim.
var (
	ErrInvalidEntry     error = &kindedError{KindInvalidEntry, "dispatch: identity does not refer to a ready-queue entry"}
	ErrInvalidPriority  error = &kindedError{KindInvalidPriority, "dispatch: priority out of range"}
	ErrInvalidTimestamp error = &kindedError{KindInvalidTimestamp, "dispatch: timestamp out of range"}

	ErrNotFound          = store.ErrNotFound
	ErrContention        = store.ErrContention
	ErrTimeout           = store.ErrTimeout
	ErrTransactionFailed = store.ErrTransactionFailed
	ErrCancelled         = store.ErrCancelled
)

var storeKinds = map[error]ErrorKind{
	store.ErrNotFound:          KindNotFound,
	store.ErrContention:        KindContention,
	store.ErrTimeout:           KindTimeout,
	store.ErrTransactionFailed: KindTransactionFailed,
	store.ErrCancelled:         KindCancelled,
}

// Kind classifies err as one of the dispatch error kinds. Unrecognized
// errors, including nil, report KindUnknown.
func Kind(err error) ErrorKind {
	var ke *kindedError
	if errors.As(err, &ke) {
		return ke.kind
	}
	for sentinel, kind := range storeKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}
