package history

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRetention is the horizon beyond which samples are discarded
// regardless of rule configuration.
const DefaultRetention = 30 * time.Minute

// Sample is a single timestamped price observation. Immutable once stored.
type Sample struct {
	Time  time.Time
	Price decimal.Decimal
}

// Store keeps a rolling per-symbol log of price samples. Samples arrive in
// non-decreasing time order from the polling loop, so eviction only ever
// drops from the front. Symbol entries are created lazily and persist for
// the process lifetime; pruning removes samples, never entries.
type Store struct {
	mu        sync.Mutex
	retention time.Duration
	series    map[string][]Sample
}

// NewStore constructs a Store with the given retention window.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		panic("history: retention must be positive")
	}
	return &Store{
		retention: retention,
		series:    map[string][]Sample{},
	}
}

// Append records a sample for symbol, creating the series if absent.
func (s *Store) Append(symbol string, sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[symbol] = append(s.series[symbol], sample)
}

// Prune drops every sample with time <= now - retention. Called after each
// append so a series never holds entries older than the retention window.
func (s *Store) Prune(symbol string, now time.Time) {
	cutoff := now.Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.series[symbol]
	if !ok {
		return
	}

	idx := 0
	for idx < len(series) && !series[idx].Time.After(cutoff) {
		idx++
	}
	if idx == 0 {
		return
	}
	s.series[symbol] = append(series[:0], series[idx:]...)
}

// BaselineAtOrBefore returns the most recent sample with time <= cutoff.
// Absence of a baseline is a valid, silent outcome: the caller simply skips
// the rule for this cycle.
func (s *Store) BaselineAtOrBefore(symbol string, cutoff time.Time) (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.series[symbol]
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Time.After(cutoff) {
			return series[i], true
		}
	}
	return Sample{}, false
}

// Len reports the number of retained samples for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series[symbol])
}
