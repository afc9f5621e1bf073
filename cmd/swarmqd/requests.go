package main

import (
	"context"
	"sync"

	"github.com/swarmq/core/dispatch"
)

// requestTable is a process-local RequestLookup: a demo stand-in for
// whatever durable store actually owns TaskRequest entities. swarmqd
// only ever needs to resolve request_id -> TaskRequest, so a map
// protected by a mutex is enough to drive the demo commands.
type requestTable struct {
	mu       sync.Mutex
	requests map[string]*dispatch.TaskRequest
}

func newRequestTable() *requestTable {
	return &requestTable{requests: make(map[string]*dispatch.TaskRequest)}
}

func (t *requestTable) put(req *dispatch.TaskRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests[req.ID] = req
}

func (t *requestTable) Get(ctx context.Context, requestID string) (*dispatch.TaskRequest, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.requests[requestID]
	if !ok {
		return nil, dispatch.ErrNotFound
	}
	return req, nil
}

func (t *requestTable) all() []*dispatch.TaskRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*dispatch.TaskRequest, 0, len(t.requests))
	for _, req := range t.requests {
		out = append(out, req)
	}
	return out
}
