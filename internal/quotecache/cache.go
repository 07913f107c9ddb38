package quotecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/fetcher"
)

const keyPrefix = "shevabot:quote:"

// Options configure the Redis-backed quote cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache keeps the most recent quote per symbol so interactive surfaces can
// show live prices without hitting the exchange. Detection never reads it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

type cachedQuote struct {
	Symbol           string    `json:"symbol"`
	Price            string    `json:"price"`
	PercentChange24h string    `json:"percent_change_24h"`
	QuoteVolume      string    `json:"quote_volume"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// New connects a quote cache. The connection is verified lazily on first use.
func New(opts Options, logger zerolog.Logger) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "quote_cache").Logger(),
	}
}

// Set stores the latest quote for its symbol.
func (c *Cache) Set(ctx context.Context, quote fetcher.Quote, at time.Time) error {
	payload, err := json.Marshal(cachedQuote{
		Symbol:           quote.Symbol,
		Price:            quote.Price.String(),
		PercentChange24h: quote.PercentChange24h.String(),
		QuoteVolume:      quote.QuoteVolume.String(),
		UpdatedAt:        at,
	})
	if err != nil {
		return fmt.Errorf("marshal cached quote: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+quote.Symbol, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached quote: %w", err)
	}
	return nil
}

// Get returns the cached quote for symbol, ok=false on a miss.
func (c *Cache) Get(ctx context.Context, symbol string) (fetcher.Quote, time.Time, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+symbol).Bytes()
	if err == redis.Nil {
		return fetcher.Quote{}, time.Time{}, false, nil
	}
	if err != nil {
		return fetcher.Quote{}, time.Time{}, false, fmt.Errorf("get cached quote: %w", err)
	}

	var cached cachedQuote
	if err := json.Unmarshal(payload, &cached); err != nil {
		return fetcher.Quote{}, time.Time{}, false, fmt.Errorf("unmarshal cached quote: %w", err)
	}

	quote, err := cached.toQuote()
	if err != nil {
		return fetcher.Quote{}, time.Time{}, false, err
	}
	return quote, cached.UpdatedAt, true, nil
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (q cachedQuote) toQuote() (fetcher.Quote, error) {
	quote := fetcher.Quote{Symbol: q.Symbol}

	var err error
	if quote.Price, err = decimal.NewFromString(q.Price); err != nil {
		return fetcher.Quote{}, fmt.Errorf("parse cached price: %w", err)
	}
	if quote.PercentChange24h, err = decimal.NewFromString(q.PercentChange24h); err != nil {
		return fetcher.Quote{}, fmt.Errorf("parse cached percent change: %w", err)
	}
	if quote.QuoteVolume, err = decimal.NewFromString(q.QuoteVolume); err != nil {
		return fetcher.Quote{}, fmt.Errorf("parse cached volume: %w", err)
	}
	return quote, nil
}
