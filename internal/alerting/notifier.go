package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/screener"
	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

// TelegramNotifier pushes alert messages through the Bot API sendMessage
// endpoint. It implements screener.Dispatcher.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram alert channel.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Deliver sends the rendered alert text to the admin chat.
func (n *TelegramNotifier) Deliver(ctx context.Context, event screener.AlertEvent) error {
	payload := map[string]string{
		"chat_id":    n.chatID,
		"text":       renderMessage(event),
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Str("symbol", event.Symbol).
		Str("kind", string(event.Kind)).
		Str("percent_change", event.PercentChange.StringFixed(2)).
		Msg("alert delivered")
	return nil
}

func renderMessage(event screener.AlertEvent) string {
	emoji, label := kindBadge(event.Kind)

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("%s **%s: %s%%** (%s)\n", emoji, label, event.PercentChange.Abs().StringFixed(2), event.Symbol))
	builder.WriteString(fmt.Sprintf("📊 Volume: $%s\n", groupThousands(event.Volume)))
	builder.WriteString(fmt.Sprintf("⏱️ %s UTC", event.Timestamp.UTC().Format("15:04")))
	return builder.String()
}

func kindBadge(kind settings.RuleKind) (string, string) {
	switch kind {
	case settings.Pump:
		return "🟢", "Pump"
	case settings.ShortPump:
		return "🟡", "Short"
	case settings.Dump:
		return "🔴", "Dump"
	}
	return "🔵", string(kind)
}

// groupThousands renders a decimal rounded to whole units with comma
// separators, e.g. 18500000.55 -> "18,500,001".
func groupThousands(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	negative := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	var out strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if negative {
		return "-" + out.String()
	}
	return out.String()
}

var _ screener.Dispatcher = (*TelegramNotifier)(nil)
