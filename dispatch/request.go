package dispatch

import (
	"context"
	"time"

	"github.com/swarmq/core/dimension"
)

// TaskRequest is the immutable side of a task: what a bot would need to
// run it. The ready-queue entry (store.Entry) only ever stores a
// derived summary (dimensions hash, queue_number); the full request is
// fetched through RequestLookup once a candidate entry clears the
// queue-side filters, mirroring the original's separate TaskRequest
// entity group (spec.md §6).
type TaskRequest struct {
	ID           string
	Priority     int
	CreatedTS    time.Time
	ExpirationTS time.Time
	Dimensions   dimension.Set
}

// RequestLookup is the external collaborator that resolves a request_id
// to its TaskRequest. Implementations should return ErrNotFound when the
// request does not exist.
type RequestLookup interface {
	Get(ctx context.Context, requestID string) (*TaskRequest, error)
}
