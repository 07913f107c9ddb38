package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shevaserg83-collab/sheva-bot/internal/fetcher"
	"github.com/shevaserg83-collab/sheva-bot/internal/history"
	"github.com/shevaserg83-collab/sheva-bot/internal/quotecache"
	"github.com/shevaserg83-collab/sheva-bot/internal/scheduler"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
	"github.com/shevaserg83-collab/sheva-bot/internal/storage"
)

// Options tune the polling cycle.
type Options struct {
	// SymbolDelay spaces consecutive ticker requests so the exchange sees a
	// bounded request rate. Defaults to 500ms.
	SymbolDelay time.Duration
}

// Screener runs one full watchlist scan per scheduler tick: fetch, volume
// filter, record history, evaluate rules, dispatch alerts. Symbols are
// processed sequentially on purpose; the inter-symbol delay is the load
// control for the market-data source, not an artifact to parallelise away.
type Screener struct {
	scheduler  *scheduler.Scheduler
	quotes     fetcher.QuoteFetcher
	history    *history.Store
	settings   *settings.Settings
	evaluator  *Evaluator
	dispatcher Dispatcher
	alertStore storage.AlertStore
	samples    storage.SampleStore
	cache      *quotecache.Cache
	logger     zerolog.Logger

	symbolDelay time.Duration
}

// New constructs the screener. alertStore, samples and cache may be nil;
// persistence and caching are best-effort sinks, never load-bearing.
func New(
	opts Options,
	sched *scheduler.Scheduler,
	quotes fetcher.QuoteFetcher,
	store *history.Store,
	s *settings.Settings,
	dispatcher Dispatcher,
	alertStore storage.AlertStore,
	samples storage.SampleStore,
	cache *quotecache.Cache,
	logger zerolog.Logger,
) *Screener {
	delay := opts.SymbolDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	return &Screener{
		scheduler:   sched,
		quotes:      quotes,
		history:     store,
		settings:    s,
		evaluator:   NewEvaluator(store, s),
		dispatcher:  dispatcher,
		alertStore:  alertStore,
		samples:     samples,
		cache:       cache,
		logger:      logger.With().Str("component", "screener").Logger(),
		symbolDelay: delay,
	}
}

// Run begins the periodic scan loop.
func (s *Screener) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.RunCycle)
}

// RunCycle performs one scan over the watchlist. A failing symbol never
// aborts the cycle; it simply contributes nothing until the next one.
func (s *Screener) RunCycle(ctx context.Context, now time.Time) error {
	watchlist := s.settings.Watchlist()
	s.logger.Info().Int("symbols", len(watchlist)).Time("cycle", now).Msg("scanning watchlist")

	for i, symbol := range watchlist {
		s.scanSymbol(ctx, symbol, now)

		if i == len(watchlist)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.symbolDelay):
		}
	}

	return ctx.Err()
}

func (s *Screener) scanSymbol(ctx context.Context, symbol string, now time.Time) {
	quote, err := s.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("fetch failed, skipping symbol this cycle")
		return
	}

	minVolume := s.settings.MinVolume(symbol)
	if quote.QuoteVolume.LessThan(minVolume) {
		s.logger.Debug().
			Str("symbol", symbol).
			Str("volume", quote.QuoteVolume.String()).
			Str("min_volume", minVolume.String()).
			Msg("volume below floor, skipping")
		return
	}

	s.history.Append(symbol, history.Sample{Time: now, Price: quote.Price})
	s.history.Prune(symbol, now)

	s.record(ctx, quote, now)

	for _, event := range s.evaluator.Evaluate(symbol, now, quote.Price, quote.QuoteVolume) {
		s.emit(ctx, event)
	}
}

// record feeds the optional audit sinks. Failures are logged and dropped.
func (s *Screener) record(ctx context.Context, quote fetcher.Quote, now time.Time) {
	if s.samples != nil {
		sample := storage.QuoteSample{
			Symbol:      quote.Symbol,
			Price:       quote.Price,
			QuoteVolume: quote.QuoteVolume,
			SampledAt:   now,
		}
		if err := s.samples.InsertQuoteSample(ctx, sample); err != nil {
			s.logger.Error().Err(err).Str("symbol", quote.Symbol).Msg("failed to persist quote sample")
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote, now); err != nil {
			s.logger.Error().Err(err).Str("symbol", quote.Symbol).Msg("failed to cache quote")
		}
	}
}

func (s *Screener) emit(ctx context.Context, event AlertEvent) {
	s.logger.Info().
		Str("symbol", event.Symbol).
		Str("kind", string(event.Kind)).
		Str("percent_change", event.PercentChange.StringFixed(2)).
		Str("price", event.CurrentPrice.String()).
		Msg("signal detected")

	if s.alertStore != nil {
		record := storage.AlertRecord{
			ID:            event.ID,
			Symbol:        event.Symbol,
			Kind:          event.Kind,
			Price:         event.CurrentPrice,
			BaselinePrice: event.BaselinePrice,
			PercentChange: event.PercentChange,
			QuoteVolume:   event.Volume,
			FiredAt:       event.Timestamp,
		}
		if err := s.alertStore.InsertAlert(ctx, record); err != nil {
			s.logger.Error().Err(err).Str("symbol", event.Symbol).Msg("failed to persist alert record")
		}
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Deliver(ctx, event); err != nil {
			s.logger.Error().Err(err).Str("symbol", event.Symbol).Msg("failed to dispatch alert")
		}
	}
}
