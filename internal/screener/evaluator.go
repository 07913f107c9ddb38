package screener

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/history"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

var hundred = decimal.NewFromInt(100)

// Evaluator runs the configured threshold rules against a symbol's rolling
// price history.
type Evaluator struct {
	history  *history.Store
	settings *settings.Settings
}

// NewEvaluator constructs an Evaluator over the shared history store and
// settings object.
func NewEvaluator(store *history.Store, s *settings.Settings) *Evaluator {
	return &Evaluator{history: store, settings: s}
}

// Evaluate checks every rule for symbol at the current sample, in the fixed
// order pump, short, dump. Rules fire independently; a sustained move
// re-alerts on every cycle since there is no cooldown between cycles.
func (e *Evaluator) Evaluate(symbol string, now time.Time, price, volume decimal.Decimal) []AlertEvent {
	var events []AlertEvent
	for _, kind := range settings.Kinds {
		rule := e.settings.Rule(kind)
		if rule.Disabled() {
			continue
		}

		cutoff := now.Add(-time.Duration(rule.LookbackMinutes) * time.Minute)
		baseline, ok := e.history.BaselineAtOrBefore(symbol, cutoff)
		if !ok {
			continue
		}

		change, fired := ruleChange(kind, price, baseline.Price, rule.ThresholdPercent)
		if !fired {
			continue
		}

		events = append(events, AlertEvent{
			ID:            uuid.NewString(),
			Symbol:        symbol,
			Kind:          kind,
			CurrentPrice:  price,
			BaselinePrice: baseline.Price,
			PercentChange: change,
			Volume:        volume,
			Timestamp:     now,
		})
	}
	return events
}

// ruleChange computes the signed percent change for a rule and reports
// whether it crosses the threshold. The threshold comparison is inclusive.
func ruleChange(kind settings.RuleKind, price, baseline, threshold decimal.Decimal) (decimal.Decimal, bool) {
	switch kind {
	case settings.Pump, settings.ShortPump:
		if price.LessThanOrEqual(baseline) {
			return decimal.Decimal{}, false
		}
		pct := price.Sub(baseline).Div(baseline).Mul(hundred)
		return pct, pct.GreaterThanOrEqual(threshold)
	case settings.Dump:
		if price.GreaterThanOrEqual(baseline) {
			return decimal.Decimal{}, false
		}
		pct := baseline.Sub(price).Div(baseline).Mul(hundred)
		return pct.Neg(), pct.GreaterThanOrEqual(threshold)
	}
	return decimal.Decimal{}, false
}
