package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr" validate:"required"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	DataSource struct {
		Providers       []string      `yaml:"providers" validate:"min=1,dive,oneof=yahoo alpha_vantage fmp mock"`
		AlphaVantageKey string        `yaml:"alpha_vantage_key"`
		FMPKey          string        `yaml:"fmp_key"`
		BreakerFailures int           `yaml:"breaker_failures" validate:"gte=1"`
		BreakerReset    time.Duration `yaml:"breaker_reset" validate:"gt=0"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string        `yaml:"backend" validate:"oneof=memory redis sqlite none"`
		MaxEntries    int           `yaml:"max_entries" validate:"gte=1"`
		SQLitePath    string        `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`
		RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
		StockTTL      time.Duration `yaml:"stock_ttl" validate:"gt=0"`
		SnapshotTTL   time.Duration `yaml:"snapshot_ttl" validate:"gt=0"`
	} `yaml:"cache"`

	Watchlist   []string `yaml:"watchlist"`
	Concurrency int      `yaml:"concurrency" validate:"gte=1,lte=20"`

	Schedule struct {
		RefreshCron string `yaml:"refresh_cron" validate:"required"`
		CloseCron   string `yaml:"close_cron" validate:"required"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" validate:"oneof=console json"`
	} `yaml:"log"`

	Proxy string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file at path (if present),
// then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (cfg *Config) applyEnv() error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.DataSource.AlphaVantageKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.DataSource.FMPKey = v
	}
	if v := os.Getenv("DATA_PROVIDERS"); v != "" {
		cfg.DataSource.Providers = splitList(v)
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		cfg.Schedule.RunOnStart = b
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if len(cfg.DataSource.Providers) == 0 {
		cfg.DataSource.Providers = []string{"yahoo", "alpha_vantage", "fmp"}
	}
	if cfg.DataSource.BreakerFailures == 0 {
		cfg.DataSource.BreakerFailures = 3
	}
	if cfg.DataSource.BreakerReset == 0 {
		cfg.DataSource.BreakerReset = time.Minute
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1000
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/niftysignal_cache.db"
	}
	if cfg.Cache.StockTTL == 0 {
		cfg.Cache.StockTTL = time.Minute
	}
	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = 5 * time.Minute
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */5 9-15 * * 1-5"
	}
	if cfg.Schedule.CloseCron == "" {
		cfg.Schedule.CloseCron = "0 45 15 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
