package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/quotecache"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

// pendingField maps an armed settings button to the write it performs when
// the next numeric message arrives from that chat.
type pendingField struct {
	kind    settings.RuleKind
	percent bool
	label   string
}

var pendingFields = map[string]pendingField{
	cbSetPumpPeriod:   {settings.Pump, false, "pump period (min)"},
	cbSetPumpPercent:  {settings.Pump, true, "pump percent (%)"},
	cbSetShortPeriod:  {settings.ShortPump, false, "short period (min)"},
	cbSetShortPercent: {settings.ShortPump, true, "short percent (%)"},
	cbSetDumpPeriod:   {settings.Dump, false, "dump period (min)"},
	cbSetDumpPercent:  {settings.Dump, true, "dump percent (%)"},
}

// Bot is the interactive settings editor: it long-polls the Bot API and
// writes through to the shared settings object, concurrently with the
// screener's polling loop.
type Bot struct {
	client   *Client
	settings *settings.Settings
	cache    *quotecache.Cache
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[int64]pendingField
}

// NewBot wires the command surface. cache may be nil; the exchanges view
// then shows the watchlist without live prices.
func NewBot(client *Client, s *settings.Settings, cache *quotecache.Cache, logger zerolog.Logger) *Bot {
	return &Bot{
		client:   client,
		settings: s,
		cache:    cache,
		logger:   logger.With().Str("component", "telegram_bot").Logger(),
		pending:  map[int64]pendingField{},
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn().Err(err).Msg("getUpdates failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, *update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, *update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		b.reply(ctx, msg.Chat.ID, greeting, mainMenuKeyboard())
	case strings.HasPrefix(text, "/add"):
		b.handleAdd(ctx, msg.Chat.ID, strings.Fields(text)[1:])
	case strings.HasPrefix(text, "/"):
		// Unknown command, ignore.
	default:
		b.handleText(ctx, msg.Chat.ID, text)
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Example: /add BTC ETH SOL", nil)
		return
	}

	var added []string
	for _, arg := range args {
		if symbol, ok := b.settings.AddSymbol(arg); ok {
			added = append(added, symbol)
		}
	}

	if len(added) == 0 {
		b.reply(ctx, chatID, "⚠️ All of those are already on the watchlist.", nil)
		return
	}
	b.logger.Info().Strs("symbols", added).Msg("watchlist extended")
	b.reply(ctx, chatID, "✅ Added: "+strings.Join(added, ", "), nil)
}

// handleText consumes a pending numeric settings input. Invalid input keeps
// the prior value and keeps the field armed so the user can retry.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	b.mu.Lock()
	field, armed := b.pending[chatID]
	b.mu.Unlock()
	if !armed {
		return
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		b.reply(ctx, chatID, "❌ Enter a number (for example: 3.5)", nil)
		return
	}

	if field.percent {
		b.settings.SetThresholdPercent(field.kind, decimal.NewFromFloat(value))
	} else {
		b.settings.SetLookbackMinutes(field.kind, int(value))
	}

	b.mu.Lock()
	delete(b.pending, chatID)
	b.mu.Unlock()

	b.logger.Info().Str("field", field.label).Float64("value", value).Msg("setting updated")
	b.reply(ctx, chatID, "✅ Setting updated!", nil)
}

func (b *Bot) handleCallback(ctx context.Context, query CallbackQuery) {
	if err := b.client.AnswerCallbackQuery(ctx, query.ID); err != nil {
		b.logger.Warn().Err(err).Msg("answerCallbackQuery failed")
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if field, ok := pendingFields[query.Data]; ok {
		b.mu.Lock()
		b.pending[chatID] = field
		b.mu.Unlock()
		b.edit(ctx, chatID, messageID, "✏️ Enter "+field.label+":", nil)
		return
	}

	switch query.Data {
	case cbSettings:
		b.edit(ctx, chatID, messageID, b.settingsIntro(), settingsKeyboard())
	case cbShowSettings:
		b.edit(ctx, chatID, messageID, b.rulesSummary(), settingsKeyboard())
	case cbExchanges:
		b.edit(ctx, chatID, messageID, b.exchangesView(ctx), mainMenuKeyboard())
	case cbProfile:
		b.edit(ctx, chatID, messageID, "👤 Profile: Shevaserg", mainMenuKeyboard())
	case cbAccess:
		b.edit(ctx, chatID, messageID, "💳 Access is open", mainMenuKeyboard())
	case cbBackToMenu:
		b.edit(ctx, chatID, messageID, greeting, mainMenuKeyboard())
	}
}

const greeting = "🚀 Welcome to the PUMP Screener for Binance Futures 📈"

func (b *Bot) settingsIntro() string {
	return "🤖 I scan the market for small pumps (🟢), large pumps (🟡 short) and sharp drops (🔴 dump).\n\n⚙️ Current settings:\n" + b.rulesSummary()
}

func (b *Bot) rulesSummary() string {
	pump := b.settings.Rule(settings.Pump)
	short := b.settings.Rule(settings.ShortPump)
	dump := b.settings.Rule(settings.Dump)
	return fmt.Sprintf(
		"🟢 Pump: %s%% over %d min\n🟡 Short: %s%% over %d min\n🔴 Dump: %s%% over %d min",
		pump.ThresholdPercent.String(), pump.LookbackMinutes,
		short.ThresholdPercent.String(), short.LookbackMinutes,
		dump.ThresholdPercent.String(), dump.LookbackMinutes,
	)
}

// exchangesView lists the watchlist, with live prices when the quote cache
// is wired in.
func (b *Bot) exchangesView(ctx context.Context) string {
	builder := strings.Builder{}
	builder.WriteString("📊 Exchange: Binance Futures\n")

	for _, symbol := range b.settings.Watchlist() {
		builder.WriteString("• " + symbol)
		if b.cache != nil {
			quote, _, ok, err := b.cache.Get(ctx, symbol)
			if err != nil {
				b.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote cache read failed")
			} else if ok {
				builder.WriteString(fmt.Sprintf(": %s (%s%% 24h)", quote.Price.String(), quote.PercentChange24h.StringFixed(2)))
			}
		}
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) {
	err := b.client.SendMessage(ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("sendMessage failed")
	}
}

func (b *Bot) edit(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) {
	err := b.client.EditMessageText(ctx, EditMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("editMessageText failed")
	}
}
