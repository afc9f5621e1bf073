// Package store defines the persistence contract the dispatch core needs
// from its backing database: single-entity get-then-put transactions, an
// indexed streaming scan ordered by queue_number, and an
// eventually-consistent expiry scan. Two implementations are provided:
// store/memstore (in-process, heap-indexed, for tests and the demo CLI)
// and store/pebblestore (persistent, backed by a pebble LSM database).
package store

import (
	"context"
	"time"
)

// Entry is the ready-queue record: spec.md §3's ReadyEntry. RequestID and
// DimensionsHash and ExpirationTS are immutable once created; QueueNumber
// is the sole mutable field, and its presence (Available() == true) is
// the entry's only authoritative availability signal.
type Entry struct {
	RequestID      string
	DimensionsHash uint32
	ExpirationTS   time.Time

	// QueueNumberSet indicates whether QueueNumber holds a meaningful
	// value. Go has no first-class "absent int" so this flag plays the
	// role Python's `queue_number is None` plays in the original.
	QueueNumberSet bool
	QueueNumber    uint64
}

// Available reports whether the entry is currently eligible for dispatch.
// This is the sole authority on availability (spec.md §3 invariant).
func (e *Entry) Available() bool { return e.QueueNumberSet }

// Clear marks the entry unavailable.
func (e *Entry) Clear() {
	e.QueueNumberSet = false
	e.QueueNumber = 0
}

// SetQueueNumber marks the entry available with the given ordering key.
func (e *Entry) SetQueueNumber(q uint64) {
	e.QueueNumberSet = true
	e.QueueNumber = q
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	cp := *e
	return &cp
}

// Txn is a single-entity transaction over one Entry, in the style of the
// original's ndb.transaction-wrapped get-then-put. Implementations must
// guarantee Get observes the latest committed value and that Put only
// takes effect if the transaction commits.
type Txn interface {
	// Get re-reads the entry by id inside the transaction. Returns
	// ErrNotFound if no such entry exists.
	Get(id string) (*Entry, error)
	// Put writes e back inside the transaction.
	Put(e *Entry) error
}

// ScanOptions tunes the indexed ready-queue scan (spec.md §4.3 step 3).
type ScanOptions struct {
	// BatchSize is the number of entries fetched per underlying round
	// trip. Implementations may ignore this for purely in-memory
	// backends.
	BatchSize int
	// PrefetchSize bounds how far ahead the scan may read speculatively.
	PrefetchSize int
}

// Cursor streams Entry values: in ascending queue_number order for
// ScanReady, in an implementation-defined order for ScanExpired. Next
// advances the cursor and reports whether a value is available; Entry
// returns the current value. Implementations must tolerate the
// underlying index being eventually consistent (spec.md §4.3).
type Cursor interface {
	Next(ctx context.Context) bool
	Entry() *Entry
	// Err returns any error encountered during iteration; nil at
	// end-of-scan with no error.
	Err() error
	Close() error
}

// Store is the dispatch core's persistence collaborator.
type Store interface {
	// RunTransaction executes fn inside a single-entity transaction. The
	// store may retry fn internally on serialization conflicts;
	// implementations that do so must make at most the number of
	// attempts the caller requests via ctx (unbounded retry is not
	// acceptable for Reap, which must fail fast under contention).
	RunTransaction(ctx context.Context, fn func(Txn) error) error

	// Get reads the entry by id outside of any transaction.
	Get(ctx context.Context, id string) (*Entry, error)

	// ScanReady opens a streaming scan over entries with QueueNumberSet
	// and QueueNumber > 0, ordered ascending by QueueNumber.
	ScanReady(ctx context.Context, opts ScanOptions) Cursor

	// ScanExpired opens a streaming scan over every entry with
	// QueueNumberSet true, regardless of expiration (the caller, i.e.
	// the sweeper, filters by ExpirationTS itself so the comparison
	// instant is pinned once).
	ScanExpired(ctx context.Context) Cursor
}
