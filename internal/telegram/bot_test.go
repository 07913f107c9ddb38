package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

// fakeAPI records Bot API calls keyed by method name.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string][]map[string]any
	srv   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{calls: map[string][]map[string]any{}}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)

		api.mu.Lock()
		api.calls[method] = append(api.calls[method], payload)
		api.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": []any{}})
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) sent(method string) []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[method]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *settings.Settings) {
	t.Helper()
	api := newFakeAPI(t)
	client := NewClient("token", api.srv.URL, time.Second)
	s := settings.New(settings.Defaults{
		Rules: map[settings.RuleKind]settings.Rule{
			settings.Pump:      {ThresholdPercent: decimal.RequireFromString("3"), LookbackMinutes: 3},
			settings.ShortPump: {ThresholdPercent: decimal.RequireFromString("20"), LookbackMinutes: 20},
			settings.Dump:      {ThresholdPercent: decimal.RequireFromString("12"), LookbackMinutes: 4},
		},
		MinVolume: decimal.NewFromInt(1_000_000),
		Watchlist: []string{"BTCUSDT"},
	})
	return NewBot(client, s, nil, zerolog.Nop()), api, s
}

func messageUpdate(chatID int64, text string) Update {
	return Update{Message: &Message{MessageID: 1, Chat: Chat{ID: chatID}, Text: text}}
}

func callbackUpdate(chatID int64, data string) Update {
	return Update{CallbackQuery: &CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &Message{MessageID: 7, Chat: Chat{ID: chatID}},
	}}
}

func TestAddCommandNormalisesSymbols(t *testing.T) {
	bot, api, s := newTestBot(t)

	bot.handleUpdate(context.Background(), messageUpdate(42, "/add eth sol BTC"))

	if !s.Contains("ETHUSDT") || !s.Contains("SOLUSDT") {
		t.Fatal("symbols must be normalised and added")
	}

	sent := api.sent("sendMessage")
	if len(sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(sent))
	}
	text := sent[0]["text"].(string)
	if !strings.Contains(text, "ETHUSDT") || !strings.Contains(text, "SOLUSDT") {
		t.Fatalf("confirmation must list new symbols: %q", text)
	}
	// BTC was already watched, so it must not be reported as added.
	if strings.Contains(text, "BTCUSDT") {
		t.Fatalf("existing symbol must not be reported: %q", text)
	}
}

func TestAddCommandWithoutArgsShowsUsage(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(context.Background(), messageUpdate(42, "/add"))

	sent := api.sent("sendMessage")
	if len(sent) != 1 || !strings.Contains(sent[0]["text"].(string), "/add BTC ETH SOL") {
		t.Fatalf("expected usage reply, got %#v", sent)
	}
}

func TestSettingsInputRoundTrip(t *testing.T) {
	bot, api, s := newTestBot(t)
	ctx := context.Background()

	// Pressing the percent button arms the field.
	bot.handleUpdate(ctx, callbackUpdate(42, cbSetPumpPercent))
	if len(api.sent("answerCallbackQuery")) != 1 {
		t.Fatal("callback must be acknowledged")
	}
	edits := api.sent("editMessageText")
	if len(edits) != 1 || !strings.Contains(edits[0]["text"].(string), "pump percent") {
		t.Fatalf("expected input prompt, got %#v", edits)
	}

	// The next numeric message writes through.
	bot.handleUpdate(ctx, messageUpdate(42, "4.5"))
	if got := s.Rule(settings.Pump).ThresholdPercent; !got.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("threshold not updated, got %s", got)
	}

	// The field is disarmed afterwards: stray numbers change nothing.
	bot.handleUpdate(ctx, messageUpdate(42, "99"))
	if got := s.Rule(settings.Pump).ThresholdPercent; !got.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("disarmed input must be ignored, got %s", got)
	}
}

func TestInvalidInputKeepsPriorValueAndStaysArmed(t *testing.T) {
	bot, api, s := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(42, cbSetDumpPercent))
	bot.handleUpdate(ctx, messageUpdate(42, "not a number"))

	if got := s.Rule(settings.Dump).ThresholdPercent; !got.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("invalid input must keep prior value, got %s", got)
	}
	sent := api.sent("sendMessage")
	if len(sent) != 1 || !strings.Contains(sent[0]["text"].(string), "Enter a number") {
		t.Fatalf("expected rejection message, got %#v", sent)
	}

	// Retry with a valid number still lands.
	bot.handleUpdate(ctx, messageUpdate(42, "15"))
	if got := s.Rule(settings.Dump).ThresholdPercent; !got.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("retry must succeed, got %s", got)
	}
}

func TestPeriodInputClamps(t *testing.T) {
	bot, _, s := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(42, cbSetShortPeriod))
	bot.handleUpdate(ctx, messageUpdate(42, "0"))

	if got := s.Rule(settings.ShortPump).LookbackMinutes; got != 1 {
		t.Fatalf("period below one must clamp to 1, got %d", got)
	}
}

func TestShowSettingsRendersRules(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(context.Background(), callbackUpdate(42, cbShowSettings))

	edits := api.sent("editMessageText")
	if len(edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(edits))
	}
	text := edits[0]["text"].(string)
	for _, want := range []string{"Pump: 3% over 3 min", "Short: 20% over 20 min", "Dump: 12% over 4 min"} {
		if !strings.Contains(text, want) {
			t.Fatalf("settings view missing %q: %q", want, text)
		}
	}
}
