package settings

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// RuleKind names one of the three fixed detection rules.
type RuleKind string

const (
	// Pump flags a rapid rise over a short lookback.
	Pump RuleKind = "pump"
	// ShortPump flags a larger rise over a longer lookback.
	ShortPump RuleKind = "short"
	// Dump flags a rapid drop.
	Dump RuleKind = "dump"
)

// Kinds lists the rules in evaluation order.
var Kinds = []RuleKind{Pump, ShortPump, Dump}

// Rule holds the tunable parameters of one detector. A ThresholdPercent of
// zero or below disables the rule.
type Rule struct {
	ThresholdPercent decimal.Decimal
	LookbackMinutes  int
}

// Disabled reports whether the rule can never fire.
func (r Rule) Disabled() bool {
	return r.ThresholdPercent.Sign() <= 0
}

// Defaults seeds a Settings object.
type Defaults struct {
	Rules     map[RuleKind]Rule
	MinVolume decimal.Decimal
	Watchlist []string
}

// Settings is the process-wide runtime-mutable configuration shared between
// the Telegram surface and the polling loop. All access goes through the
// RWMutex so an evaluator read concurrent with an editor write sees either
// the old or the new value, never a torn one.
type Settings struct {
	mu        sync.RWMutex
	rules     map[RuleKind]Rule
	minVolume decimal.Decimal
	watchlist []string
	seen      map[string]struct{}
}

// New builds Settings from defaults. Watchlist symbols are normalised and
// deduplicated, insertion order preserved.
func New(defaults Defaults) *Settings {
	s := &Settings{
		rules:     map[RuleKind]Rule{},
		minVolume: defaults.MinVolume,
		seen:      map[string]struct{}{},
	}
	for _, kind := range Kinds {
		rule := defaults.Rules[kind]
		if rule.LookbackMinutes < 1 {
			rule.LookbackMinutes = 1
		}
		s.rules[kind] = rule
	}
	for _, symbol := range defaults.Watchlist {
		s.add(symbol)
	}
	return s
}

// Rule returns the current parameters for kind.
func (s *Settings) Rule(kind RuleKind) Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules[kind]
}

// SetThresholdPercent replaces the threshold for kind. Any finite value is
// accepted; zero or negative means disabled.
func (s *Settings) SetThresholdPercent(kind RuleKind, percent decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule := s.rules[kind]
	rule.ThresholdPercent = percent
	s.rules[kind] = rule
}

// SetLookbackMinutes replaces the lookback for kind, clamping values below
// one minute up to one.
func (s *Settings) SetLookbackMinutes(kind RuleKind, minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rule := s.rules[kind]
	rule.LookbackMinutes = minutes
	s.rules[kind] = rule
}

// MinVolume returns the quote-volume floor for symbol. The floor is a single
// global value today; the symbol parameter keeps the lookup shape ready for
// per-symbol floors.
func (s *Settings) MinVolume(symbol string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minVolume
}

// SetMinVolume replaces the global volume floor.
func (s *Settings) SetMinVolume(v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minVolume = v
}

// NormalizeSymbol upper-cases a user-entered ticker and ensures the USDT
// suffix, so "btc" and "BTCUSDT" both map to "BTCUSDT".
func NormalizeSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	return strings.TrimSuffix(symbol, "USDT") + "USDT"
}

// AddSymbol normalises and appends a symbol to the watchlist. Returns the
// normalised symbol and whether it was newly added.
func (s *Settings) AddSymbol(raw string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(raw)
}

func (s *Settings) add(raw string) (string, bool) {
	symbol := NormalizeSymbol(raw)
	if symbol == "USDT" {
		return symbol, false
	}
	if _, ok := s.seen[symbol]; ok {
		return symbol, false
	}
	s.seen[symbol] = struct{}{}
	s.watchlist = append(s.watchlist, symbol)
	return symbol, true
}

// Contains reports watchlist membership for a normalised symbol.
func (s *Settings) Contains(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[NormalizeSymbol(symbol)]
	return ok
}

// Watchlist returns a snapshot copy in insertion order.
func (s *Settings) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.watchlist))
	copy(out, s.watchlist)
	return out
}
