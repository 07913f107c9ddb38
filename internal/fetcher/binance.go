package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const tickerPath = "/fapi/v1/ticker/24hr"

// BinanceOptions parameterise the futures ticker client.
type BinanceOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Binance fetches 24hr ticker statistics from the USDT-M futures API.
type Binance struct {
	opts    BinanceOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewBinance constructs a Binance quote fetcher.
func NewBinance(opts BinanceOptions, logger zerolog.Logger) *Binance {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://fapi.binance.com"
	}

	return &Binance{
		opts:    opts,
		logger:  logger.With().Str("component", "binance_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchQuote retrieves the 24hr ticker for symbol and returns its last
// price, 24h percent change and quote-asset volume.
func (b *Binance) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, errors.New("symbol required")
	}

	endpoint := b.baseURL + tickerPath + "?symbol=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(b.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return Quote{}, parseHTTPError(resp.StatusCode, payload)
	}

	var ticker tickerResponse
	if err := json.Unmarshal(payload, &ticker); err != nil {
		return Quote{}, fmt.Errorf("decode ticker: %w", err)
	}

	price, err := decimal.NewFromString(ticker.LastPrice)
	if err != nil {
		return Quote{}, fmt.Errorf("parse lastPrice: %w", err)
	}
	if price.Sign() <= 0 {
		return Quote{}, fmt.Errorf("non-positive last price %q for %s", ticker.LastPrice, symbol)
	}

	change, err := decimal.NewFromString(ticker.PriceChangePercent)
	if err != nil {
		return Quote{}, fmt.Errorf("parse priceChangePercent: %w", err)
	}

	volume, err := decimal.NewFromString(ticker.QuoteVolume)
	if err != nil {
		return Quote{}, fmt.Errorf("parse quoteVolume: %w", err)
	}
	if volume.Sign() < 0 {
		return Quote{}, fmt.Errorf("negative quote volume %q for %s", ticker.QuoteVolume, symbol)
	}

	return Quote{
		Symbol:           symbol,
		Price:            price,
		PercentChange24h: change,
		QuoteVolume:      volume,
	}, nil
}

type tickerResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("binance api error (%d): %s", status, apiErr.Message)
	}
	if len(payload) > 0 {
		return fmt.Errorf("binance api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("binance api error (%d)", status)
}

var _ QuoteFetcher = (*Binance)(nil)
