package pebblestore

import (
	"context"
	"testing"
	"time"

	"github.com/swarmq/core/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPebbleStorePutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	exp := time.Now().Add(time.Hour).UTC()

	err := s.RunTransaction(context.Background(), func(txn store.Txn) error {
		e := &store.Entry{RequestID: "req-1", DimensionsHash: 42, ExpirationTS: exp}
		e.SetQueueNumber(100)
		return txn.Put(e)
	})
	if err != nil {
		t.Fatalf("RunTransaction: %v", err)
	}

	got, err := s.Get(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RequestID != "req-1" || got.DimensionsHash != 42 || got.QueueNumber != 100 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.ExpirationTS.Equal(exp) {
		t.Fatalf("ExpirationTS = %v, want %v", got.ExpirationTS, exp)
	}
}

func TestPebbleStoreScanReadyOrdering(t *testing.T) {
	s := openTestStore(t)
	exp := time.Now().Add(time.Hour).UTC()

	for _, tc := range []struct {
		id string
		q  uint64
	}{
		{"c", 300}, {"a", 100}, {"b", 200},
	} {
		tc := tc
		err := s.RunTransaction(context.Background(), func(txn store.Txn) error {
			e := &store.Entry{RequestID: tc.id, ExpirationTS: exp}
			e.SetQueueNumber(tc.q)
			return txn.Put(e)
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	cur := s.ScanReady(context.Background(), store.ScanOptions{})
	defer cur.Close()
	var order []string
	for cur.Next(context.Background()) {
		order = append(order, cur.Entry().RequestID)
	}
	if err := cur.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestPebbleStorePutClearsStaleIndexRow(t *testing.T) {
	s := openTestStore(t)
	exp := time.Now().Add(time.Hour).UTC()

	mk := func(q uint64, available bool) error {
		return s.RunTransaction(context.Background(), func(txn store.Txn) error {
			e, err := txn.Get("req-1")
			if err == store.ErrNotFound {
				e = &store.Entry{RequestID: "req-1", ExpirationTS: exp}
			} else if err != nil {
				return err
			}
			if available {
				e.SetQueueNumber(q)
			} else {
				e.Clear()
			}
			return txn.Put(e)
		})
	}
	if err := mk(100, true); err != nil {
		t.Fatal(err)
	}
	if err := mk(0, false); err != nil {
		t.Fatal(err)
	}

	cur := s.ScanReady(context.Background(), store.ScanOptions{})
	defer cur.Close()
	if cur.Next(context.Background()) {
		t.Fatalf("expected no ready entries after clearing, got %v", cur.Entry())
	}
}
