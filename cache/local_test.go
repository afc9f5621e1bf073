package cache

import (
	"testing"
	"time"

	"github.com/swarmq/core/mclock"
)

func TestLocalCacheMarkTakenAndIsTaken(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(0, 0))
	c := NewLocalCache(&clk)

	if taken, _ := c.IsTaken("a"); taken {
		t.Fatalf("expected not taken before MarkTaken")
	}
	c.MarkTaken("a")
	if taken, _ := c.IsTaken("a"); !taken {
		t.Fatalf("expected taken after MarkTaken")
	}
}

func TestLocalCacheExpiresAfterTTL(t *testing.T) {
	var clk mclock.Simulated
	clk.Set(time.Unix(0, 0))
	c := NewLocalCache(&clk).WithTTL(120 * time.Second)

	c.MarkTaken("a")
	clk.Advance(121 * time.Second)
	if taken, _ := c.IsTaken("a"); taken {
		t.Fatalf("expected entry to have expired after TTL elapsed")
	}
}

func TestLocalCacheMarkAvailableClearsEntry(t *testing.T) {
	var clk mclock.Simulated
	c := NewLocalCache(&clk)
	c.MarkTaken("a")
	c.MarkAvailable("a")
	if taken, _ := c.IsTaken("a"); taken {
		t.Fatalf("expected not taken after MarkAvailable")
	}
}

func TestLocalCacheMarkAvailableIdempotent(t *testing.T) {
	var clk mclock.Simulated
	c := NewLocalCache(&clk)
	if err := c.MarkAvailable("never-set"); err != nil {
		t.Fatalf("MarkAvailable on absent key should be a no-op, got %v", err)
	}
}
