package screener

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

// AlertEvent describes one detected move. Events are handed to the
// dispatcher immediately and not retained.
type AlertEvent struct {
	ID            string
	Symbol        string
	Kind          settings.RuleKind
	CurrentPrice  decimal.Decimal
	BaselinePrice decimal.Decimal
	// PercentChange is signed: positive for pump/short, negative for dump.
	PercentChange decimal.Decimal
	Volume        decimal.Decimal
	Timestamp     time.Time
}

// Dispatcher delivers alert events to the outside world. A delivery failure
// is logged by the caller and otherwise ignored; a dropped alert is an
// accepted loss.
type Dispatcher interface {
	Deliver(ctx context.Context, event AlertEvent) error
}
