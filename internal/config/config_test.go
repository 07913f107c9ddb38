package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: shevabot\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Screener.Interval != 60*time.Second {
		t.Fatalf("default interval should be 60s, got %s", cfg.Screener.Interval)
	}
	if cfg.Screener.Retention != 30*time.Minute {
		t.Fatalf("default retention should be 30m, got %s", cfg.Screener.Retention)
	}
	if cfg.Screener.MinVolume != 1_000_000 {
		t.Fatalf("default min volume should be 1,000,000, got %f", cfg.Screener.MinVolume)
	}
	if len(cfg.Screener.Watchlist) != 4 {
		t.Fatalf("default watchlist should have 4 symbols, got %v", cfg.Screener.Watchlist)
	}
	if cfg.Rules.Pump.Percent != 3.0 || cfg.Rules.Pump.Period != 3 {
		t.Fatalf("unexpected pump defaults %+v", cfg.Rules.Pump)
	}
	if cfg.Rules.Short.Percent != 20.0 || cfg.Rules.Short.Period != 20 {
		t.Fatalf("unexpected short defaults %+v", cfg.Rules.Short)
	}
	if cfg.Rules.Dump.Percent != 12.0 || cfg.Rules.Dump.Period != 4 {
		t.Fatalf("unexpected dump defaults %+v", cfg.Rules.Dump)
	}
	if cfg.Telegram.Enabled {
		t.Fatal("telegram should be disabled by default")
	}
}

func TestTelegramRequiresCredentialsWhenEnabled(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram:\n  enabled: true\n"))
	if err == nil {
		t.Fatal("enabled telegram without token must fail validation")
	}

	_, err = Load(writeConfig(t, "telegram:\n  enabled: true\n  bot_token: abc\n"))
	if err == nil {
		t.Fatal("enabled telegram without chat id must fail validation")
	}

	cfg, err := Load(writeConfig(t, "telegram:\n  enabled: true\n  bot_token: abc\n  admin_chat_id: \"123\"\n"))
	if err != nil {
		t.Fatalf("complete telegram config must load: %v", err)
	}
	if cfg.Telegram.PollTimeout != 30*time.Second {
		t.Fatalf("default poll timeout should be 30s, got %s", cfg.Telegram.PollTimeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"zero interval":      "screener:\n  interval: 0s\n",
		"zero retention":     "screener:\n  retention: 0s\n",
		"empty watchlist":    "screener:\n  watchlist: []\n",
		"rule period below1": "rules:\n  pump:\n    period_minutes: 0\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
