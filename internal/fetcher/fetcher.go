package fetcher

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is one market-data observation for a symbol.
type Quote struct {
	Symbol           string
	Price            decimal.Decimal
	PercentChange24h decimal.Decimal
	QuoteVolume      decimal.Decimal
}

// QuoteFetcher retrieves the current quote for a symbol. Implementations
// must tolerate being called repeatedly at roughly two calls per second.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}
