// Package prque implements a priority queue ordered by an ascending
// uint64 priority, used by store/memstore to serve the ready-queue's
// queue_number-ordered scan without re-sorting on every poll.
//
// Adapted from the teacher's common/prque idiom (a container/heap-backed
// priority queue keyed by a plain numeric priority) with one addition the
// original never needed: removal of an arbitrary element by key, since a
// ready-queue entry's priority changes in place on Retry/Abort rather than
// only ever being popped from the front.
package prque

import (
	"container/heap"
	"sort"
)

// Prque is a priority queue of values of type V ordered by an ascending
// uint64 priority: PopMin always returns the lowest priority first.
type Prque[V any] struct {
	h *innerHeap[V]
	// index maps an external key to its current slot, enabling Remove.
	index map[uint64]int
}

type item[V any] struct {
	value    V
	priority uint64
	key      uint64
}

type innerHeap[V any] []*item[V]

func (h innerHeap[V]) Len() int            { return len(h) }
func (h innerHeap[V]) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h innerHeap[V]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap[V]) Push(x interface{}) { *h = append(*h, x.(*item[V])) }
func (h *innerHeap[V]) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// New creates an empty priority queue.
func New[V any]() *Prque[V] {
	h := make(innerHeap[V], 0)
	return &Prque[V]{h: &h, index: make(map[uint64]int)}
}

// Push inserts value under key with the given priority. If key already
// exists its entry is replaced.
func (p *Prque[V]) Push(key uint64, value V, priority uint64) {
	p.Remove(key)
	it := &item[V]{value: value, priority: priority, key: key}
	heap.Push(p.h, it)
	p.reindex()
}

// Remove deletes key from the queue, if present.
func (p *Prque[V]) Remove(key uint64) {
	slot, ok := p.index[key]
	if !ok {
		return
	}
	heap.Remove(p.h, slot)
	delete(p.index, key)
	p.reindex()
}

// reindex rebuilds the key->slot index after a heap mutation. The heap is
// expected to stay small enough (bounded by the number of currently
// available ready-queue entries) that this is cheaper than threading
// index maintenance through every heap.Fix callback.
func (p *Prque[V]) reindex() {
	for k := range p.index {
		delete(p.index, k)
	}
	for i, it := range *p.h {
		p.index[it.key] = i
	}
}

// Size returns the number of elements in the queue.
func (p *Prque[V]) Size() int { return p.h.Len() }

// Empty reports whether the queue has no elements.
func (p *Prque[V]) Empty() bool { return p.h.Len() == 0 }

// PopMin removes and returns the lowest-priority element.
func (p *Prque[V]) PopMin() (value V, priority uint64, key uint64, ok bool) {
	if p.Empty() {
		return value, 0, 0, false
	}
	it := heap.Pop(p.h).(*item[V])
	delete(p.index, it.key)
	p.reindex()
	return it.value, it.priority, it.key, true
}

// Ascending returns every (key, value, priority) triple in ascending
// priority order, without mutating the queue. Used by memstore's
// streaming scan.
func (p *Prque[V]) Ascending() []struct {
	Key      uint64
	Value    V
	Priority uint64
} {
	// Sort a copy; the live heap array is only heap-ordered, not fully
	// sorted.
	sorted := make([]*item[V], len(*p.h))
	copy(sorted, *p.h)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].priority < sorted[j].priority })

	out := make([]struct {
		Key      uint64
		Value    V
		Priority uint64
	}, len(sorted))
	for i, it := range sorted {
		out[i].Key = it.key
		out[i].Value = it.value
		out[i].Priority = it.priority
	}
	return out
}
