package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/swarmq/core/cache"
	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/mclock"
	"github.com/swarmq/core/store/memstore"
)

func newTestDispatcher(t *testing.T, clk mclock.Clock) (*Dispatcher, *fakeLookup) {
	t.Helper()
	lookup := newFakeLookup()
	d := NewDispatcher(memstore.New(), cache.NewLocalCache(clk), clk, lookup, Config{})
	return d, lookup
}

func seed(t *testing.T, d *Dispatcher, lookup *fakeLookup, req *TaskRequest) {
	t.Helper()
	lookup.put(req)
	if err := Create(context.Background(), d.Store, req); err != nil {
		t.Fatalf("seeding %s failed: %v", req.ID, err)
	}
}

func drain(t *testing.T, it *CandidateIter) []Candidate {
	t.Helper()
	var out []Candidate
	ctx := context.Background()
	for it.Next(ctx) {
		out = append(out, it.Candidate())
	}
	return out
}

func TestYieldCandidatesMatchesSubsetDimensions(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "req-1", Priority: 100,
		CreatedTS: time.Unix(500, 0), ExpirationTS: time.Unix(10000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})

	bot := dimension.NewSingle(map[string]string{"os": "Linux", "pool": "default"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 1 || got[0].Request.ID != "req-1" {
		t.Fatalf("expected req-1 to match, got %+v", got)
	}
}

func TestYieldCandidatesSkipsMismatchedDimensions(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "req-1", Priority: 100,
		CreatedTS: time.Unix(500, 0), ExpirationTS: time.Unix(10000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Mac"}),
	})

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestYieldCandidatesPriorityBeatsAge(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "old-low-priority", Priority: 200,
		CreatedTS: time.Unix(0, 0), ExpirationTS: time.Unix(10000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})
	seed(t, d, lookup, &TaskRequest{
		ID: "new-high-priority", Priority: 10,
		CreatedTS: time.Unix(900, 0), ExpirationTS: time.Unix(10000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 2 {
		t.Fatalf("expected both entries, got %d", len(got))
	}
	if got[0].Request.ID != "new-high-priority" {
		t.Fatalf("expected the lower priority number (more urgent) first, got %s", got[0].Request.ID)
	}
}

func TestYieldCandidatesSkipsExpiredEntries(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "req-expired", Priority: 100,
		CreatedTS: time.Unix(0, 0), ExpirationTS: time.Unix(999, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 0 {
		t.Fatalf("expected expired entry to be skipped, got %+v", got)
	}
}

func TestYieldCandidatesTreatsExpirationEqualToNowAsNotExpired(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "req-boundary", Priority: 100,
		CreatedTS: time.Unix(0, 0), ExpirationTS: time.Unix(1000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 1 {
		t.Fatalf("expected an entry whose expiration_ts equals now to still be dispatchable, got %+v", got)
	}
}

func TestYieldCandidatesSkipsCachedTaken(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	seed(t, d, lookup, &TaskRequest{
		ID: "req-1", Priority: 100,
		CreatedTS: time.Unix(500, 0), ExpirationTS: time.Unix(10000, 0),
		Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
	})
	if err := d.Cache.MarkTaken(EntryID("req-1")); err != nil {
		t.Fatalf("MarkTaken failed: %v", err)
	}

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) != 0 {
		t.Fatalf("expected cached-taken entry to be skipped, got %+v", got)
	}
}

func TestYieldCandidatesRespectsScanBudget(t *testing.T) {
	clk := &steppingClock{now: time.Unix(1000, 0), step: 100 * time.Second}
	d, lookup := newTestDispatcher(t, clk)
	d.Config.ScanBudget = 50 * time.Second

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		seed(t, d, lookup, &TaskRequest{
			ID: id, Priority: 100,
			CreatedTS: time.Unix(int64(i), 0), ExpirationTS: time.Unix(100000, 0),
			Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
		})
	}

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	got := drain(t, d.YieldCandidates(context.Background(), bot))
	if len(got) >= 5 {
		t.Fatalf("expected the scan budget to cut the scan short, got all %d entries", len(got))
	}
}

func TestCandidateIterCloseStopsEarly(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(1000, 0))
	d, lookup := newTestDispatcher(t, &clk)

	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		seed(t, d, lookup, &TaskRequest{
			ID: id, Priority: 100,
			CreatedTS: time.Unix(int64(i), 0), ExpirationTS: time.Unix(100000, 0),
			Dimensions: dimension.NewSingle(map[string]string{"os": "Linux"}),
		})
	}

	bot := dimension.NewSingle(map[string]string{"os": "Linux"})
	it := d.YieldCandidates(context.Background(), bot)
	if !it.Next(context.Background()) {
		t.Fatalf("expected at least one candidate")
	}
	it.Close()
}
