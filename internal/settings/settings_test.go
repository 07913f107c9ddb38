package settings

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func testDefaults() Defaults {
	return Defaults{
		Rules: map[RuleKind]Rule{
			Pump:      {ThresholdPercent: decimal.NewFromFloat(3.0), LookbackMinutes: 3},
			ShortPump: {ThresholdPercent: decimal.NewFromFloat(20.0), LookbackMinutes: 20},
			Dump:      {ThresholdPercent: decimal.NewFromFloat(12.0), LookbackMinutes: 4},
		},
		MinVolume: decimal.NewFromInt(1_000_000),
		Watchlist: []string{"BTCUSDT", "ETHUSDT"},
	}
}

func TestLookbackClampedToOne(t *testing.T) {
	s := New(testDefaults())

	s.SetLookbackMinutes(Pump, 0)
	if got := s.Rule(Pump).LookbackMinutes; got != 1 {
		t.Fatalf("lookback 0 should clamp to 1, got %d", got)
	}

	s.SetLookbackMinutes(Pump, -7)
	if got := s.Rule(Pump).LookbackMinutes; got != 1 {
		t.Fatalf("negative lookback should clamp to 1, got %d", got)
	}

	s.SetLookbackMinutes(Pump, 15)
	if got := s.Rule(Pump).LookbackMinutes; got != 15 {
		t.Fatalf("expected lookback 15, got %d", got)
	}
}

func TestZeroThresholdDisablesRule(t *testing.T) {
	s := New(testDefaults())

	s.SetThresholdPercent(Dump, decimal.Zero)
	if !s.Rule(Dump).Disabled() {
		t.Fatal("zero threshold must disable the rule")
	}

	s.SetThresholdPercent(Dump, decimal.NewFromFloat(-1.5))
	if !s.Rule(Dump).Disabled() {
		t.Fatal("negative threshold must disable the rule")
	}

	s.SetThresholdPercent(Dump, decimal.NewFromFloat(0.1))
	if s.Rule(Dump).Disabled() {
		t.Fatal("positive threshold must enable the rule")
	}
}

func TestWatchlistNormalisesAndDedupes(t *testing.T) {
	s := New(Defaults{MinVolume: decimal.NewFromInt(1)})

	symbol, added := s.AddSymbol("btc")
	if symbol != "BTCUSDT" || !added {
		t.Fatalf("expected BTCUSDT newly added, got %s added=%v", symbol, added)
	}
	if _, added := s.AddSymbol("BTCUSDT"); added {
		t.Fatal("duplicate must not be added twice")
	}
	if _, added := s.AddSymbol(" sol "); !added {
		t.Fatal("expected SOLUSDT to be added")
	}

	want := []string{"BTCUSDT", "SOLUSDT"}
	got := s.Watchlist()
	if len(got) != len(want) {
		t.Fatalf("watchlist %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("watchlist order %v, want %v", got, want)
		}
	}

	if !s.Contains("btc") {
		t.Fatal("Contains must normalise its argument")
	}
	if s.Contains("PEPE") {
		t.Fatal("PEPEUSDT was never added")
	}
}

func TestWatchlistSnapshotIsCopy(t *testing.T) {
	s := New(testDefaults())
	snap := s.Watchlist()
	snap[0] = "XRPUSDT"
	if s.Watchlist()[0] != "BTCUSDT" {
		t.Fatal("mutating the snapshot must not affect internal state")
	}
}

func TestConcurrentEditsAreRaceFree(t *testing.T) {
	s := New(testDefaults())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.SetThresholdPercent(Pump, decimal.NewFromInt(int64(n)))
			s.SetLookbackMinutes(Dump, n)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Rule(Pump)
			_ = s.MinVolume("BTCUSDT")
			_ = s.Watchlist()
		}()
	}
	wg.Wait()
}
