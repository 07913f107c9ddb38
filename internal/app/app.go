package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/alerting"
	"github.com/shevaserg83-collab/sheva-bot/internal/config"
	"github.com/shevaserg83-collab/sheva-bot/internal/fetcher"
	"github.com/shevaserg83-collab/sheva-bot/internal/history"
	"github.com/shevaserg83-collab/sheva-bot/internal/quotecache"
	"github.com/shevaserg83-collab/sheva-bot/internal/scheduler"
	"github.com/shevaserg83-collab/sheva-bot/internal/screener"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
	"github.com/shevaserg83-collab/sheva-bot/internal/storage"
	"github.com/shevaserg83-collab/sheva-bot/internal/telegram"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newSettings() *settings.Settings {
	rules := a.Config.Rules
	return settings.New(settings.Defaults{
		Rules: map[settings.RuleKind]settings.Rule{
			settings.Pump:      {ThresholdPercent: decimal.NewFromFloat(rules.Pump.Percent), LookbackMinutes: rules.Pump.Period},
			settings.ShortPump: {ThresholdPercent: decimal.NewFromFloat(rules.Short.Percent), LookbackMinutes: rules.Short.Period},
			settings.Dump:      {ThresholdPercent: decimal.NewFromFloat(rules.Dump.Percent), LookbackMinutes: rules.Dump.Period},
		},
		MinVolume: decimal.NewFromFloat(a.Config.Screener.MinVolume),
		Watchlist: a.Config.Screener.Watchlist,
	})
}

func (a *App) newFetcher() fetcher.QuoteFetcher {
	return fetcher.NewBinance(fetcher.BinanceOptions{
		BaseURL:   a.Config.Binance.BaseURL,
		Timeout:   a.Config.Binance.RequestTimeout,
		UserAgent: a.Config.Binance.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() screener.Dispatcher {
	if !a.Config.Telegram.Enabled {
		return nil
	}
	cfg := a.Config.Telegram
	return alerting.NewTelegramNotifier(cfg.BotToken, cfg.AdminChatID, cfg.APIBase, 10*time.Second, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) openCache() (*quotecache.Cache, func()) {
	if a.Config.Redis.Addr == "" {
		return nil, nil
	}
	cache := quotecache.New(quotecache.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
		TTL:      a.Config.Redis.QuoteTTL,
	}, a.Logger)
	closer := func() {
		if err := cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing quote cache")
		}
	}
	return cache, closer
}

// Run executes the long-running screener, with the Telegram command surface
// alongside when configured.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; alert auditing disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	cache, closeCache := a.openCache()
	if closeCache != nil {
		defer closeCache()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Screener.Interval,
		StartupDelay: a.Config.Screener.StartupDelay,
	}, a.Logger)

	shared := a.newSettings()
	priceHistory := history.NewStore(a.Config.Screener.Retention)
	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("telegram not configured; alerts will only be logged")
	}

	var alertStore storage.AlertStore
	var sampleStore storage.SampleStore
	if store != nil {
		alertStore = store
		sampleStore = store
	}

	scr := screener.New(
		screener.Options{SymbolDelay: a.Config.Screener.SymbolDelay},
		sched,
		a.newFetcher(),
		priceHistory,
		shared,
		notifier,
		alertStore,
		sampleStore,
		cache,
		a.Logger,
	)

	if a.Config.Telegram.Enabled {
		client := telegram.NewClient(a.Config.Telegram.BotToken, a.Config.Telegram.APIBase, a.Config.Telegram.PollTimeout)
		bot := telegram.NewBot(client, shared, cache, a.Logger)
		go func() {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error().Err(err).Msg("telegram bot stopped")
			}
		}()
	}

	a.Logger.Info().
		Strs("watchlist", shared.Watchlist()).
		Dur("interval", a.Config.Screener.Interval).
		Msg("starting screener")

	err = scr.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("screener terminated with error")
		return err
	}

	a.Logger.Info().Msg("screener stopped")
	return nil
}

// ExportOptions hold parameters for exporting sampled quotes.
type ExportOptions struct {
	Symbol    string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}
