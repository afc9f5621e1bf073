package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/swarmq/core/cache"
	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/internal/lru"
	"github.com/swarmq/core/internal/xlog"
	"github.com/swarmq/core/mclock"
	"github.com/swarmq/core/store"
)

// Candidate pairs a ready-queue entry that cleared every queue-side
// filter with the full request a bot would need to run it.
type Candidate struct {
	Entry   *ReadyEntry
	Request *TaskRequest
}

// Dispatcher implements the read path: matching a bot's dimensions
// against the ready queue without ever claiming an entry itself. Reap and
// Abort are the operations that actually remove an entry from the queue.
type Dispatcher struct {
	Store   store.Store
	Cache   cache.ShortTTLCache
	Clock   mclock.Clock
	Lookup  RequestLookup
	Config  Config
	Metrics *Metrics
	Log     xlog.Logger

	allowSetsMu sync.Mutex
	allowSets   *lru.BasicLRU[string, map[uint32]struct{}]
}

// NewDispatcher wires the collaborators together. If cfg.ScanBatchSize
// is zero (as in the zero Config), cfg is replaced as a whole by
// DefaultConfig; its other fields are not kept.
func NewDispatcher(s store.Store, c cache.ShortTTLCache, clk mclock.Clock, lookup RequestLookup, cfg Config) *Dispatcher {
	if cfg.ScanBatchSize == 0 {
		cfg = DefaultConfig()
	}
	return &Dispatcher{
		Store:     s,
		Cache:     c,
		Clock:     clk,
		Lookup:    lookup,
		Config:    cfg,
		Log:       xlog.Root(),
		allowSets: lru.NewBasicLRU[string, map[uint32]struct{}](64),
	}
}

func (d *Dispatcher) allowSetFor(bot dimension.Set) map[uint32]struct{} {
	key := string(dimension.CanonicalJSON(bot))
	d.allowSetsMu.Lock()
	defer d.allowSetsMu.Unlock()
	if set, ok := d.allowSets.Get(key); ok {
		return set
	}
	set := dimension.AllowSet(bot)
	d.allowSets.Add(key, set)
	return set
}

// CandidateIter streams Candidates produced by a single YieldCandidates
// scan. It must be drained (Next until false) or Close'd to release the
// scanning goroutine.
type CandidateIter struct {
	ch     chan Candidate
	cancel context.CancelFunc
	cur    Candidate
}

// Next blocks until a candidate is available, the scan ends, or ctx is
// cancelled. It returns false in the latter two cases.
func (it *CandidateIter) Next(ctx context.Context) bool {
	select {
	case c, ok := <-it.ch:
		if !ok {
			return false
		}
		it.cur = c
		return true
	case <-ctx.Done():
		it.Close()
		return false
	}
}

// Candidate returns the value produced by the most recent successful
// Next call.
func (it *CandidateIter) Candidate() Candidate { return it.cur }

// Close stops the underlying scan early, e.g. once a caller has reaped
// the candidate it wanted. Safe to call more than once.
func (it *CandidateIter) Close() { it.cancel() }

// YieldCandidates scans the ready queue for entries whose dimensions
// match bot, filtering out expired, already-taken, and stale-hash
// entries along the way (spec.md §4.3 / yield_next_available_task_to_dispatch).
// The scan runs under its own goroutine so candidates can be consumed
// lazily: a caller that reaps the first match can Close the iterator
// without paying for the rest of the scan.
func (d *Dispatcher) YieldCandidates(ctx context.Context, bot dimension.Set) *CandidateIter {
	scanCtx, cancel := context.WithCancel(ctx)
	it := &CandidateIter{ch: make(chan Candidate), cancel: cancel}

	go d.scan(scanCtx, bot, it.ch)

	return it
}

func (d *Dispatcher) scan(ctx context.Context, bot dimension.Set, out chan<- Candidate) {
	defer close(out)

	start := d.Clock.Now()
	budget := d.Config.ScanBudget
	allow := d.allowSetFor(bot)

	cursor := d.Store.ScanReady(ctx, store.ScanOptions{
		BatchSize:    d.Config.ScanBatchSize,
		PrefetchSize: d.Config.ScanPrefetchSize,
	})
	defer cursor.Close()

	var counters scanCounters

	for cursor.Next(ctx) {
		if d.Clock.Now().Sub(start) > budget {
			break
		}

		entry := cursor.Entry()
		counters.total++

		if entry.RequestID == "" {
			counters.broken++
			continue
		}
		if !entry.Available() {
			counters.noQueue++
			continue
		}
		if entry.ExpirationTS.Before(start) {
			counters.expired++
			continue
		}
		if _, ok := allow[entry.DimensionsHash]; !ok {
			counters.hashMismatch++
			continue
		}

		taken, err := d.Cache.IsTaken(EntryID(entry.RequestID))
		if err != nil {
			d.Log.Warn("dispatch: negative cache lookup failed", "request_id", entry.RequestID, "err", err)
		} else if taken {
			counters.cacheLookup++
			continue
		}

		req, err := d.Lookup.Get(ctx, entry.RequestID)
		if errors.Is(err, ErrNotFound) {
			counters.broken++
			continue
		}
		if err != nil {
			d.Log.Warn("dispatch: request lookup failed", "request_id", entry.RequestID, "err", err)
			counters.broken++
			continue
		}

		if !dimension.Match(req.Dimensions, bot) {
			counters.realMismatch++
			continue
		}

		counters.yielded++
		select {
		case out <- Candidate{Entry: entry, Request: req}:
		case <-ctx.Done():
			d.finishScan(start, &counters)
			return
		}
	}
	if err := cursor.Err(); err != nil {
		d.Log.Warn("dispatch: scan cursor error", "err", err)
	}

	d.finishScan(start, &counters)
}

func (d *Dispatcher) finishScan(start time.Time, counters *scanCounters) {
	elapsed := d.Clock.Now().Sub(start)
	counters.record(d.Metrics)
	if d.Metrics != nil {
		d.Metrics.ScanBudget.Observe(elapsed.Seconds())
	}
	d.Log.Info("dispatch: scan complete",
		"elapsed", elapsed,
		"total", counters.total,
		"expired", counters.expired,
		"no_queue_number", counters.noQueue,
		"hash_mismatch", counters.hashMismatch,
		"cache_taken", counters.cacheLookup,
		"real_mismatch", counters.realMismatch,
		"yielded", counters.yielded,
		"broken", counters.broken,
	)
}
