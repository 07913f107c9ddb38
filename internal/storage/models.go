package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

// AlertRecord is the persisted form of an emitted alert, kept for auditing
// only. The in-memory detection loop never reads these back.
type AlertRecord struct {
	ID            string
	Symbol        string
	Kind          settings.RuleKind
	Price         decimal.Decimal
	BaselinePrice decimal.Decimal
	PercentChange decimal.Decimal
	QuoteVolume   decimal.Decimal
	FiredAt       time.Time
	CreatedAt     time.Time
}

// QuoteSample is one persisted per-cycle observation for a symbol.
type QuoteSample struct {
	Symbol      string
	Price       decimal.Decimal
	QuoteVolume decimal.Decimal
	SampledAt   time.Time
	CreatedAt   time.Time
}
