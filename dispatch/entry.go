package dispatch

import (
	"strings"

	"github.com/swarmq/core/store"
)

// ReadyEntry is the dispatch core's view of a store.Entry: a queue-side
// summary of a dispatchable task, keyed by the request it belongs to.
// It is a plain alias rather than a wrapper type since the store package
// owns the storage-level shape and dispatch only ever adds interpretation
// on top of it (queue_number meaning, expiration comparisons).
type ReadyEntry = store.Entry

const entryIDPrefix = "ttr:"

// EntryID derives the opaque identity handed to external callers
// (reap/retry/abort/validate) from a request's own identity. Mirrors the
// original's distinct TaskToRun key kind layered over the TaskRequest
// parent key: the entry's identity is never independent of its request's.
func EntryID(requestID string) string {
	return entryIDPrefix + requestID
}

// RequestIDFromEntryID is EntryID's inverse. It returns ErrInvalidEntry
// if entryID was never produced by EntryID, i.e. does not refer to a
// ready-queue entry at all (spec.md §7, InvalidEntryKind).
func RequestIDFromEntryID(entryID string) (string, error) {
	requestID, ok := strings.CutPrefix(entryID, entryIDPrefix)
	if !ok || requestID == "" {
		return "", ErrInvalidEntry
	}
	return requestID, nil
}

// Validate performs the structural check validate_to_run_key performs in
// the original: it does not touch storage, it only rejects identities
// that could not possibly name a ready-queue entry.
func Validate(entryID string) error {
	_, err := RequestIDFromEntryID(entryID)
	return err
}
