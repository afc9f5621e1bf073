// Package memstore is an in-process reference implementation of
// store.Store, backed by a plain map plus a heap-based secondary index
// (internal/prque) for queue_number ordering. It exists so the
// dispatcher, mutators, and sweeper can be tested (and demoed, see
// cmd/swarmqd) without a real database.
//
// Concurrency is serialized behind a single mutex rather than per-key
// locking: this is simpler than a production store needs to be, but it
// still gives the single-reaper guarantee spec.md §5 requires, since no
// two transactions ever execute concurrently. store/pebblestore
// serializes its transactions with a mutex in the same way, with a
// durable on-disk database underneath.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/swarmq/core/internal/prque"
	"github.com/swarmq/core/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu      sync.Mutex
	entries map[string]*store.Entry
	index   *prque.Prque[string]
	ids     map[string]uint64
	nextID  uint64
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]*store.Entry),
		index:   prque.New[string](),
		ids:     make(map[string]uint64),
	}
}

func (s *Store) idFor(requestID string) uint64 {
	id, ok := s.ids[requestID]
	if !ok {
		s.nextID++
		id = s.nextID
		s.ids[requestID] = id
	}
	return id
}

// reindex brings the priority index in sync with e's current
// availability and queue number. Must be called with s.mu held.
func (s *Store) reindex(e *store.Entry) {
	key := s.idFor(e.RequestID)
	if e.QueueNumberSet && e.QueueNumber > 0 {
		s.index.Push(key, e.RequestID, e.QueueNumber)
	} else {
		s.index.Remove(key)
	}
}

type txn struct {
	s *Store
}

func (t *txn) Get(id string) (*store.Entry, error) {
	e, ok := t.s.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e.Clone(), nil
}

func (t *txn) Put(e *store.Entry) error {
	cp := e.Clone()
	t.s.entries[cp.RequestID] = cp
	t.s.reindex(cp)
	return nil
}

// RunTransaction implements store.Store.
func (s *Store) RunTransaction(ctx context.Context, fn func(store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return store.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&txn{s: s})
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (*store.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e.Clone(), nil
}

type sliceCursor struct {
	items []*store.Entry
	pos   int
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if c.pos >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Entry() *store.Entry {
	if c.pos == 0 || c.pos > len(c.items) {
		return nil
	}
	return c.items[c.pos-1]
}

func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }

// ScanReady implements store.Store. opts is accepted for interface
// compatibility with the production store; an in-memory snapshot has no
// batching to tune.
func (s *Store) ScanReady(ctx context.Context, _ store.ScanOptions) store.Cursor {
	s.mu.Lock()
	ascending := s.index.Ascending()
	items := make([]*store.Entry, 0, len(ascending))
	for _, it := range ascending {
		if e, ok := s.entries[it.Value]; ok {
			items = append(items, e.Clone())
		}
	}
	s.mu.Unlock()
	return &sliceCursor{items: items}
}

// ScanExpired implements store.Store: every entry currently marked
// available, sorted by request id (the sweeper does its own expiry
// comparison).
func (s *Store) ScanExpired(ctx context.Context) store.Cursor {
	s.mu.Lock()
	items := make([]*store.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Available() {
			items = append(items, e.Clone())
		}
	}
	s.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].RequestID < items[j].RequestID })
	return &sliceCursor{items: items}
}
