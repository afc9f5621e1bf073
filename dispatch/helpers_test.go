package dispatch

import (
	"context"
	"sync"
	"time"
)

// steppingClock advances by step every time Now is called, letting tests
// simulate a scan that takes real wall-clock time to run without
// sleeping.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// fakeLookup is a RequestLookup backed by a plain map, for tests that
// need a TaskRequest collaborator without standing up a database.
type fakeLookup struct {
	mu       sync.Mutex
	requests map[string]*TaskRequest
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{requests: make(map[string]*TaskRequest)}
}

func (f *fakeLookup) put(req *TaskRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[req.ID] = req
}

func (f *fakeLookup) Get(ctx context.Context, requestID string) (*TaskRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return req, nil
}
