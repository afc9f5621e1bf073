package dispatch

import (
	"context"
	"fmt"

	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/queuekey"
	"github.com/swarmq/core/store"
)

// Create builds and persists the ready-queue entry for a freshly
// submitted request. It is the Go counterpart of _put_task_to_run: the
// entry starts available (queue_number set) since a just-created task
// has never been reaped.
func Create(ctx context.Context, s store.Store, req *TaskRequest) error {
	if req.Priority < 0 || req.Priority > queuekey.MaxPriority {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, req.Priority)
	}
	key, err := queuekey.Key(req.Priority, req.CreatedTS)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	entry := &store.Entry{
		RequestID:      req.ID,
		DimensionsHash: dimension.HashSet(req.Dimensions),
		ExpirationTS:   req.ExpirationTS,
	}
	entry.SetQueueNumber(key)

	return s.RunTransaction(ctx, func(txn store.Txn) error {
		return txn.Put(entry)
	})
}
