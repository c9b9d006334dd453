package jobstore

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"concurrent-static-server/internal/events"
)

func TestSnapshotUninitialized(t *testing.T) {
	s := New()

	entries, ok := s.Snapshot()
	if ok {
		t.Error("expected uninitialized store")
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %v", entries)
	}
	if s.Len() != 0 {
		t.Errorf("expected length 0, got %d", s.Len())
	}
}

func TestRecordInitializesEvenWhenEmpty(t *testing.T) {
	s := New()
	s.Record()

	entries, ok := s.Snapshot()
	if !ok {
		t.Fatal("expected store to be initialized after Record")
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}

func TestRecordPreservesOrder(t *testing.T) {
	s := New()
	s.Record("a", "b")
	s.Record("c")

	entries, ok := s.Snapshot()
	if !ok {
		t.Fatal("expected initialized store")
	}

	expected := []string{"a", "b", "c"}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(entries))
	}
	for i := range expected {
		if entries[i] != expected[i] {
			t.Errorf("entry %d: expected %s, got %s", i, expected[i], entries[i])
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New()
	s.Record("a")

	entries, _ := s.Snapshot()
	entries[0] = "mutated"

	again, _ := s.Snapshot()
	if again[0] != "a" {
		t.Errorf("snapshot mutation leaked into store: %v", again)
	}
}

func TestConcurrentRecordDoesNotInterleave(t *testing.T) {
	s := New()
	const writers = 20
	const batch = 4

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries := make([]string, batch)
			for i := range batch {
				entries[i] = fmt.Sprintf("w%d-%d", w, i)
			}
			s.Record(entries...)
		}()
	}
	wg.Wait()

	entries, _ := s.Snapshot()
	if len(entries) != writers*batch {
		t.Fatalf("expected %d entries, got %d", writers*batch, len(entries))
	}

	for start := 0; start < len(entries); start += batch {
		var w int
		if _, err := fmt.Sscanf(entries[start], "w%d-0", &w); err != nil {
			t.Fatalf("batch at %d does not start with a first entry: %s", start, entries[start])
		}
		for i := range batch {
			want := fmt.Sprintf("w%d-%d", w, i)
			if entries[start+i] != want {
				t.Errorf("position %d: expected %s, got %s", start+i, want, entries[start+i])
			}
		}
	}
}

func TestRecordPublishesEvent(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe()

	s := New()
	s.SetEventBus(bus)
	s.Record("a", "b")

	select {
	case e := <-ch:
		if e.Type != events.EventResultsRecorded {
			t.Errorf("expected %s, got %s", events.EventResultsRecorded, e.Type)
		}
		if e.Data.Entries != 2 || e.Data.Total != 2 {
			t.Errorf("unexpected event data: %+v", e.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}
