package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/shevaserg83-collab/sheva-bot/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Binance  BinanceConfig  `mapstructure:"binance"`
	Screener ScreenerConfig `mapstructure:"screener"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates the optional PostgreSQL audit sink.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig encapsulates the optional latest-quote cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	QuoteTTL time.Duration `mapstructure:"quote_ttl"`
}

// BinanceConfig covers market-data access.
type BinanceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ScreenerConfig governs the polling cycle.
type ScreenerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	SymbolDelay  time.Duration `mapstructure:"symbol_delay"`
	Retention    time.Duration `mapstructure:"retention"`
	MinVolume    float64       `mapstructure:"min_volume"`
	Watchlist    []string      `mapstructure:"watchlist"`
}

// RuleConfig seeds one detection rule. Runtime edits via Telegram override
// these until the process restarts.
type RuleConfig struct {
	Percent float64 `mapstructure:"percent"`
	Period  int     `mapstructure:"period_minutes"`
}

// RulesConfig seeds the three detection rules.
type RulesConfig struct {
	Pump  RuleConfig `mapstructure:"pump"`
	Short RuleConfig `mapstructure:"short"`
	Dump  RuleConfig `mapstructure:"dump"`
}

// TelegramConfig describes the bot surface and alert channel.
type TelegramConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BotToken    string        `mapstructure:"bot_token"`
	AdminChatID string        `mapstructure:"admin_chat_id"`
	APIBase     string        `mapstructure:"api_base"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHEVABOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shevabot")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("binance.base_url", "https://fapi.binance.com")
	v.SetDefault("binance.request_timeout", "5s")
	v.SetDefault("binance.user_agent", "shevabot/1.0")

	v.SetDefault("screener.interval", "60s")
	v.SetDefault("screener.startup_delay", "0s")
	v.SetDefault("screener.symbol_delay", "500ms")
	v.SetDefault("screener.retention", "30m")
	v.SetDefault("screener.min_volume", 1_000_000.0)
	v.SetDefault("screener.watchlist", []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "PEPEUSDT"})

	v.SetDefault("rules.pump.percent", 3.0)
	v.SetDefault("rules.pump.period_minutes", 3)
	v.SetDefault("rules.short.percent", 20.0)
	v.SetDefault("rules.short.period_minutes", 20)
	v.SetDefault("rules.dump.percent", 12.0)
	v.SetDefault("rules.dump.period_minutes", 4)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", "30s")

	v.SetDefault("redis.quote_ttl", "5m")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Screener.Interval <= 0 {
		return fmt.Errorf("screener.interval must be greater than zero")
	}
	if c.Screener.Retention <= 0 {
		return fmt.Errorf("screener.retention must be greater than zero")
	}
	if c.Screener.SymbolDelay < 0 {
		return fmt.Errorf("screener.symbol_delay cannot be negative")
	}
	if c.Screener.MinVolume < 0 {
		return fmt.Errorf("screener.min_volume cannot be negative")
	}
	if len(c.Screener.Watchlist) == 0 {
		return fmt.Errorf("screener.watchlist must name at least one symbol")
	}
	if c.Rules.Pump.Period < 1 || c.Rules.Short.Period < 1 || c.Rules.Dump.Period < 1 {
		return fmt.Errorf("rule period_minutes must be at least 1")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.AdminChatID == "" {
			return fmt.Errorf("telegram.admin_chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
