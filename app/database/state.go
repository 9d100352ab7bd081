package database

import (
	"time"
)

const secondsPerDay = 24 * 60 * 60

// State is the de-duplication ledger: identity key to first-seen Unix time.
//
// Records loaded with a value that is not an integer timestamp are kept in
// malformed. They still count as seen, are never pruned, and are written back
// as they were read.
type State struct {
	seen      map[string]int64
	malformed map[string]any
}

type Stats struct {
	Records   int
	Malformed int
	Oldest    *time.Time
	Newest    *time.Time
}

func NewState() *State {
	return &State{
		seen:      make(map[string]int64),
		malformed: make(map[string]any),
	}
}

func (s *State) Contains(key string) bool {
	if _, ok := s.seen[key]; ok {
		return true
	}
	_, ok := s.malformed[key]
	return ok
}

// Insert records key as first seen at ts. An existing record is left alone
// and false is returned.
func (s *State) Insert(key string, ts int64) bool {
	if s.Contains(key) {
		return false
	}
	s.seen[key] = ts
	return true
}

func (s *State) Remove(key string) {
	delete(s.seen, key)
	delete(s.malformed, key)
}

// FirstSeen returns the timestamp of a well-formed record.
func (s *State) FirstSeen(key string) (int64, bool) {
	ts, ok := s.seen[key]
	return ts, ok
}

// Prune drops every well-formed record older than retentionDays relative to
// now and returns how many were removed.
func (s *State) Prune(now time.Time, retentionDays int) int {
	cutoff := PruneCutoff(now, retentionDays)

	removed := 0
	for key, ts := range s.seen {
		if ts < cutoff {
			delete(s.seen, key)
			removed++
		}
	}
	return removed
}

// Expired counts the records Prune would remove without touching them.
func (s *State) Expired(now time.Time, retentionDays int) int {
	cutoff := PruneCutoff(now, retentionDays)

	count := 0
	for _, ts := range s.seen {
		if ts < cutoff {
			count++
		}
	}
	return count
}

func PruneCutoff(now time.Time, retentionDays int) int64 {
	return now.Unix() - int64(retentionDays)*secondsPerDay
}

func (s *State) Len() int {
	return len(s.seen) + len(s.malformed)
}

func (s *State) Stats() Stats {
	stats := Stats{
		Records:   s.Len(),
		Malformed: len(s.malformed),
	}

	var oldest, newest int64
	for _, ts := range s.seen {
		if stats.Oldest == nil || ts < oldest {
			oldest = ts
			t := time.Unix(ts, 0)
			stats.Oldest = &t
		}
		if stats.Newest == nil || ts > newest {
			newest = ts
			t := time.Unix(ts, 0)
			stats.Newest = &t
		}
	}

	return stats
}

func (s *State) setMalformed(key string, value any) {
	s.malformed[key] = value
}
