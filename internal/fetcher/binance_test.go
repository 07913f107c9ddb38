package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestBinance(baseURL string) *Binance {
	return NewBinance(BinanceOptions{
		BaseURL:   baseURL,
		Timeout:   time.Second,
		UserAgent: "test",
	}, noopLogger())
}

func TestFetchQuoteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("expected symbol query BTCUSDT, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"symbol":             "BTCUSDT",
			"lastPrice":          "65012.40",
			"priceChangePercent": "2.150",
			"quoteVolume":        "18500000.55",
		})
	}))
	defer srv.Close()

	quote, err := newTestBinance(srv.URL).FetchQuote(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Price.Equal(decimal.RequireFromString("65012.40")) {
		t.Fatalf("unexpected price %s", quote.Price)
	}
	if !quote.QuoteVolume.Equal(decimal.RequireFromString("18500000.55")) {
		t.Fatalf("unexpected volume %s", quote.QuoteVolume)
	}
}

func TestFetchQuoteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": -1121, "msg": "Invalid symbol."})
	}))
	defer srv.Close()

	if _, err := newTestBinance(srv.URL).FetchQuote(context.Background(), "NOPEUSDT"); err == nil {
		t.Fatal("HTTP 400 must return an error")
	}
}

func TestFetchQuoteRejectsNonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"symbol":             "BTCUSDT",
			"lastPrice":          "0",
			"priceChangePercent": "0",
			"quoteVolume":        "1",
		})
	}))
	defer srv.Close()

	if _, err := newTestBinance(srv.URL).FetchQuote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("zero price must be rejected")
	}
}

func TestFetchQuoteMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := newTestBinance(srv.URL).FetchQuote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("malformed payload must return an error")
	}
}

func TestFetchQuoteMissingSymbol(t *testing.T) {
	if _, err := newTestBinance("http://localhost").FetchQuote(context.Background(), ""); err == nil {
		t.Fatal("empty symbol must return an error")
	}
}
