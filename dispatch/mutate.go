package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/queuekey"
	"github.com/swarmq/core/store"
)

// ReapInTxn performs the claiming get-then-put against an
// already-open transaction: it clears the entry's queue_number and
// reports whether this call was the one that did so. Callers that
// already hold a Transaction (e.g. because the reap is one step of a
// larger unit of work) should use this directly; Reap is the
// convenience wrapper that opens its own transaction for callers that
// don't need anything else in the same transaction.
func (d *Dispatcher) ReapInTxn(txn store.Txn, entryID string) (bool, error) {
	requestID, err := RequestIDFromEntryID(entryID)
	if err != nil {
		return false, err
	}

	entry, err := txn.Get(requestID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !entry.Available() {
		return false, nil
	}
	entry.Clear()
	if err := txn.Put(entry); err != nil {
		return false, err
	}
	return true, nil
}

// Reap claims entryID: it clears the entry's queue_number inside a
// single-entity transaction so a concurrent reaper sees the same
// get-then-put race the original relies on for its single-reaper
// guarantee. It returns false (no error) if the entry was already
// claimed or never existed, since both are "someone else got there
// first" outcomes a caller should just move on from.
func (d *Dispatcher) Reap(ctx context.Context, entryID string) (bool, error) {
	var reaped bool
	err := d.Store.RunTransaction(ctx, func(txn store.Txn) error {
		var terr error
		reaped, terr = d.ReapInTxn(txn, entryID)
		return terr
	})
	if err != nil {
		return false, err
	}
	if reaped {
		if cerr := d.Cache.MarkTaken(entryID); cerr != nil {
			d.Log.Warn("dispatch: negative cache publish failed", "entry_id", entryID, "err", cerr)
		}
	}
	return reaped, nil
}

// Retry puts entryID back on the ready queue after a bot failed to
// start it. It re-reads the owning TaskRequest via Lookup to recompute
// the queue_number from the original priority and created_ts, so
// retries keep their place by original submission time rather than
// jumping the queue (spec.md §5, retry_task_to_run). It is a no-op,
// returning false without error, if the owning request can no longer
// be found, if the entry is already available (idempotence, spec.md
// §8), or if the entry no longer exists: nothing here resurrects a
// missing entry. Transient store errors are retried with at most one
// internal retry, matching the original's ndb.transaction(...,
// retries=1); if the transaction still fails, Retry returns false
// rather than erroring.
func (d *Dispatcher) Retry(ctx context.Context, entryID string) (bool, error) {
	requestID, err := RequestIDFromEntryID(entryID)
	if err != nil {
		return false, err
	}

	original, err := d.Lookup.Get(ctx, requestID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	key, err := queuekey.Key(original.Priority, original.CreatedTS)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)

	var retried bool
	opErr := backoff.Retry(func() error {
		retried = false
		return d.Store.RunTransaction(ctx, func(txn store.Txn) error {
			entry, err := txn.Get(requestID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if entry.Available() {
				return nil
			}
			entry.DimensionsHash = dimension.HashSet(original.Dimensions)
			entry.ExpirationTS = original.ExpirationTS
			entry.SetQueueNumber(key)
			retried = true
			return txn.Put(entry)
		})
	}, policy)

	if opErr != nil {
		if store.IsTransient(opErr) {
			return false, nil
		}
		return false, opErr
	}
	if retried {
		if cerr := d.Cache.MarkAvailable(entryID); cerr != nil {
			d.Log.Warn("dispatch: negative cache clear failed", "entry_id", entryID, "err", cerr)
		}
	}
	return retried, nil
}

// Abort unconditionally removes entryID from the ready queue, whether or
// not it was still available, and is idempotent: aborting an
// already-aborted entry is a no-op.
func (d *Dispatcher) Abort(ctx context.Context, entryID string) error {
	requestID, err := RequestIDFromEntryID(entryID)
	if err != nil {
		return err
	}

	err = d.Store.RunTransaction(ctx, func(txn store.Txn) error {
		entry, err := txn.Get(requestID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		entry.Clear()
		return txn.Put(entry)
	})
	if err != nil {
		return err
	}
	if cerr := d.Cache.MarkTaken(entryID); cerr != nil {
		d.Log.Warn("dispatch: negative cache publish failed", "entry_id", entryID, "err", cerr)
	}
	return nil
}
