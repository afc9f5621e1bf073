package dispatch

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/swarmq/core/store"
)

// Sweeper walks the ready queue looking for entries whose expiration_ts
// has passed, so they can be cancelled out of the queue even though no
// bot ever polled them away (spec.md §4.4). It reuses the Dispatcher's
// Store and Clock rather than duplicating the scan machinery, since
// "expired" here means the same thing YieldCandidates' expiry check
// means.
type Sweeper struct {
	Store store.Store
	d     *Dispatcher
}

// NewSweeper builds a Sweeper bound to d's store and clock.
func NewSweeper(d *Dispatcher) *Sweeper {
	return &Sweeper{Store: d.Store, d: d}
}

// YieldExpired returns the entry IDs of every ready-queue entry whose
// expiration has passed as of now.
func (sw *Sweeper) YieldExpired(ctx context.Context) ([]string, error) {
	now := sw.d.Clock.Now()
	cursor := sw.Store.ScanExpired(ctx)
	defer cursor.Close()

	var ids []string
	for cursor.Next(ctx) {
		e := cursor.Entry()
		if !e.Available() {
			continue
		}
		if !e.ExpirationTS.Before(now) {
			continue
		}
		ids = append(ids, EntryID(e.RequestID))
	}
	if err := cursor.Err(); err != nil {
		return ids, err
	}
	return ids, nil
}

// CancelAll aborts every currently expired entry, collecting and
// returning every failure rather than stopping at the first one, since a
// single broken entry should not block the rest of the sweep.
func (sw *Sweeper) CancelAll(ctx context.Context) error {
	ids, err := sw.YieldExpired(ctx)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, id := range ids {
		if err := sw.d.Abort(ctx, id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
