package database

import (
	"testing"
	"time"
)

func TestStatePrune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	retention := 90

	state := NewState()
	state.Insert("old", now.Unix()-int64(retention+1)*secondsPerDay)
	state.Insert("recent", now.Unix()-int64(retention-1)*secondsPerDay)
	state.Insert("edge", now.Unix()-int64(retention)*secondsPerDay)
	state.setMalformed("broken", "not a timestamp")

	removed := state.Prune(now, retention)

	if removed != 1 {
		t.Errorf("Expected 1 record pruned, got %d", removed)
	}
	if state.Contains("old") {
		t.Error("Expected record older than retention window to be pruned")
	}
	if !state.Contains("recent") {
		t.Error("Expected record inside retention window to remain")
	}
	// The cutoff itself is not strictly older.
	if !state.Contains("edge") {
		t.Error("Expected record exactly at the cutoff to remain")
	}
	if !state.Contains("broken") {
		t.Error("Expected malformed record to survive pruning")
	}
}

func TestStateExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	state := NewState()
	state.Insert("a", now.Unix()-10*secondsPerDay)
	state.Insert("b", now.Unix())

	if got := state.Expired(now, 5); got != 1 {
		t.Errorf("Expected 1 expired record, got %d", got)
	}
	if state.Len() != 2 {
		t.Errorf("Expected Expired not to modify state, got %d records", state.Len())
	}
}

func TestStateInsertKeepsFirstSeen(t *testing.T) {
	state := NewState()

	if !state.Insert("key", 100) {
		t.Fatal("Expected first insert to succeed")
	}
	if state.Insert("key", 200) {
		t.Error("Expected second insert to be rejected")
	}

	ts, ok := state.FirstSeen("key")
	if !ok || ts != 100 {
		t.Errorf("Expected first seen 100, got %d (%v)", ts, ok)
	}

	state.setMalformed("weird", "x")
	if state.Insert("weird", 300) {
		t.Error("Expected insert over a malformed record to be rejected")
	}
}

func TestStateRemove(t *testing.T) {
	state := NewState()
	state.Insert("a", 1)
	state.setMalformed("b", true)

	state.Remove("a")
	state.Remove("b")
	state.Remove("missing")

	if state.Len() != 0 {
		t.Errorf("Expected empty state, got %d records", state.Len())
	}
}

func TestStateStats(t *testing.T) {
	state := NewState()

	empty := state.Stats()
	if empty.Records != 0 || empty.Oldest != nil || empty.Newest != nil {
		t.Errorf("Unexpected stats for empty state: %+v", empty)
	}

	state.Insert("a", 300)
	state.Insert("b", 100)
	state.Insert("c", 200)
	state.setMalformed("d", "bad")

	stats := state.Stats()
	if stats.Records != 4 {
		t.Errorf("Expected 4 records, got %d", stats.Records)
	}
	if stats.Malformed != 1 {
		t.Errorf("Expected 1 malformed record, got %d", stats.Malformed)
	}
	if stats.Oldest == nil || stats.Oldest.Unix() != 100 {
		t.Errorf("Expected oldest 100, got %v", stats.Oldest)
	}
	if stats.Newest == nil || stats.Newest.Unix() != 300 {
		t.Errorf("Expected newest 300, got %v", stats.Newest)
	}
}
