package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/screener"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

var simHundred = decimal.NewFromInt(100)

// SimulateAlert pushes a synthetic alert through the configured channel so
// delivery can be verified without waiting for a real move.
func (a *App) SimulateAlert(ctx context.Context, symbol string, kind settings.RuleKind, price, baseline, volume decimal.Decimal) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	if baseline.Sign() <= 0 || price.Sign() <= 0 {
		return errors.New("price and baseline must be greater than zero")
	}

	var change decimal.Decimal
	switch kind {
	case settings.Pump, settings.ShortPump:
		if price.LessThanOrEqual(baseline) {
			return fmt.Errorf("%s requires price above baseline", kind)
		}
		change = price.Sub(baseline).Div(baseline).Mul(simHundred)
	case settings.Dump:
		if price.GreaterThanOrEqual(baseline) {
			return errors.New("dump requires price below baseline")
		}
		change = baseline.Sub(price).Div(baseline).Mul(simHundred).Neg()
	default:
		return fmt.Errorf("unknown rule kind %q", kind)
	}

	event := screener.AlertEvent{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Kind:          kind,
		CurrentPrice:  price,
		BaselinePrice: baseline,
		PercentChange: change,
		Volume:        volume,
		Timestamp:     time.Now().UTC(),
	}

	return notifier.Deliver(ctx, event)
}
