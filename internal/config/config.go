package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"octopus-price-alerts/internal/logging"
	"octopus-price-alerts/internal/tariff"
)

const tariffPageURL = "https://octopusenergy.it/le-nostre-tariffe"

// Config materialises application configuration.
type Config struct {
	App         AppConfig                  `mapstructure:"app"`
	Logging     logging.Config             `mapstructure:"logging"`
	State       StateConfig                `mapstructure:"state"`
	Fetch       FetchConfig                `mapstructure:"fetch"`
	Commodities map[string]CommodityConfig `mapstructure:"commodities"`
	Database    DatabaseConfig             `mapstructure:"database"`
	Scheduler   SchedulerConfig            `mapstructure:"scheduler"`
	Alerting    AlertingConfig             `mapstructure:"alerting"`
	Export      ExportConfig               `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// StateConfig locates the durable alert state record.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// FetchConfig tunes the tariff page HTTP client.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// CommodityConfig describes one monitored commodity.
type CommodityConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	URL     string  `mapstructure:"url"`
	Target  float64 `mapstructure:"target"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity for history.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs watch-mode cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines notification routing and the dispatch-failure policy.
type AlertingConfig struct {
	// MarkNotifiedOnFailure flips the failed-dispatch policy: when true a
	// failed send still marks the commodity notified (risking a silent miss);
	// the default keeps it unmarked (risking a duplicate next run).
	MarkNotifiedOnFailure bool           `mapstructure:"mark_notified_on_failure"`
	Timeout               time.Duration  `mapstructure:"timeout"`
	Telegram              TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OCTOWATCH")
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
	v.SetDefault("app.name", "octowatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("state.path", "state.json")

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; PriceBot/1.0; +https://example.org/bot)")

	v.SetDefault("commodities.electricity.enabled", true)
	v.SetDefault("commodities.electricity.url", tariffPageURL)
	v.SetDefault("commodities.electricity.target", 0.11)

	v.SetDefault("commodities.gas.enabled", true)
	v.SetDefault("commodities.gas.url", tariffPageURL)
	v.SetDefault("commodities.gas.target", 0.85)

	v.SetDefault("scheduler.interval", "6h")
	v.SetDefault("scheduler.align_to_interval", false)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x6f637470))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("alerting.mark_notified_on_failure", false)
	v.SetDefault("alerting.timeout", "15s")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

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
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}

	enabled := 0
	for name, cc := range c.Commodities {
		if _, err := tariff.Parse(name); err != nil {
			return fmt.Errorf("commodities: %w", err)
		}
		if !cc.Enabled {
			continue
		}
		enabled++
		if cc.URL == "" {
			return fmt.Errorf("commodities.%s.url must be configured", name)
		}
		if cc.Target <= 0 {
			return fmt.Errorf("commodities.%s.target must be greater than zero", name)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one commodity must be enabled")
	}

	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
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
