package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleAt(t time.Time, price int64) Sample {
	return Sample{Time: t, Price: decimal.NewFromInt(price)}
}

func TestPruneDropsStaleSamples(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	store := NewStore(30 * time.Minute)

	store.Append("BTCUSDT", sampleAt(now.Add(-45*time.Minute), 100))
	store.Append("BTCUSDT", sampleAt(now.Add(-30*time.Minute), 101))
	store.Append("BTCUSDT", sampleAt(now.Add(-10*time.Minute), 102))
	store.Append("BTCUSDT", sampleAt(now, 103))
	store.Prune("BTCUSDT", now)

	// -45m and the exact -30m boundary are both stale (timestamp <= now-retention).
	if got := store.Len("BTCUSDT"); got != 2 {
		t.Fatalf("expected 2 retained samples, got %d", got)
	}

	baseline, ok := store.BaselineAtOrBefore("BTCUSDT", now.Add(-5*time.Minute))
	if !ok {
		t.Fatal("expected a baseline")
	}
	if !baseline.Price.Equal(decimal.NewFromInt(102)) {
		t.Fatalf("expected baseline price 102, got %s", baseline.Price)
	}
}

func TestPruneInvariantOverSequence(t *testing.T) {
	start := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	retention := 30 * time.Minute
	store := NewStore(retention)

	now := start
	for i := 0; i < 120; i++ {
		now = start.Add(time.Duration(i) * time.Minute)
		store.Append("ETHUSDT", sampleAt(now, int64(1000+i)))
		store.Prune("ETHUSDT", now)

		oldest, ok := store.BaselineAtOrBefore("ETHUSDT", now)
		if !ok {
			t.Fatalf("iteration %d: sample just appended must be retained", i)
		}
		_ = oldest

		if stale, ok := store.BaselineAtOrBefore("ETHUSDT", now.Add(-retention)); ok {
			t.Fatalf("iteration %d: retained stale sample at %s", i, stale.Time)
		}
	}
}

func TestBaselinePicksMostRecentAtOrBeforeCutoff(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	store := NewStore(DefaultRetention)

	store.Append("SOLUSDT", sampleAt(now.Add(-9*time.Minute), 10))
	store.Append("SOLUSDT", sampleAt(now.Add(-6*time.Minute), 11))
	store.Append("SOLUSDT", sampleAt(now.Add(-3*time.Minute), 12))

	baseline, ok := store.BaselineAtOrBefore("SOLUSDT", now.Add(-5*time.Minute))
	if !ok {
		t.Fatal("expected a baseline")
	}
	if !baseline.Price.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("expected price 11 (latest sample <= cutoff), got %s", baseline.Price)
	}

	// Cutoff exactly on a sample timestamp includes that sample.
	baseline, ok = store.BaselineAtOrBefore("SOLUSDT", now.Add(-3*time.Minute))
	if !ok || !baseline.Price.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("cutoff equal to timestamp must match, got ok=%v price=%s", ok, baseline.Price)
	}
}

func TestBaselineAbsent(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	store := NewStore(DefaultRetention)

	if _, ok := store.BaselineAtOrBefore("BTCUSDT", now); ok {
		t.Fatal("unknown symbol must have no baseline")
	}

	store.Append("BTCUSDT", sampleAt(now, 100))
	if _, ok := store.BaselineAtOrBefore("BTCUSDT", now.Add(-time.Minute)); ok {
		t.Fatal("cutoff before every sample must have no baseline")
	}
}

func TestNewStoreRejectsNonPositiveRetention(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive retention")
		}
	}()
	NewStore(0)
}
