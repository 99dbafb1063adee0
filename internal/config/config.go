package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// DateLayout is the format of configured and user supplied dates.
const DateLayout = "2006-01-02"

type Config struct {
	Telegram   TelegramConfig   `toml:"telegram"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Yahoo      YahooConfig      `toml:"yahoo"`
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type TelegramConfig struct {
	Token            string `toml:"token"`
	WebhookPublicURL string `toml:"webhook_public_url"`
}

// OpenAIConfig is optional; commentary is skipped when APIKey is empty.
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type YahooConfig struct {
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	Concurrency       int     `toml:"concurrency"`
	CacheDir          string  `toml:"cache_dir"` // disk HTTP cache, disabled when empty
}

// GetTimeout parses the timeout, falling back to 20s.
func (c YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

type SimulationConfig struct {
	Samples      int     `toml:"samples"`
	MaxSamples   int     `toml:"max_samples"`
	RiskFreeRate float64 `toml:"risk_free_rate"`
	StartDate    string  `toml:"start_date"`
	EndDate      string  `toml:"end_date"`
}

// Range returns the parsed default date range.
func (c SimulationConfig) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", c.EndDate, err)
	}
	return start, end, nil
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func NewDefaultConfig() *Config {
	return &Config{
		OpenAI:  OpenAIConfig{Model: "gpt-4"},
		Server:  ServerConfig{Port: "9095"},
		Storage: StorageConfig{DBPath: "/app/data/usage.db"},
		Yahoo: YahooConfig{
			Timeout:           "20s",
			RequestsPerSecond: 4,
			Burst:             2,
			Concurrency:       4,
		},
		Simulation: SimulationConfig{
			Samples:      10000,
			MaxSamples:   50000,
			RiskFreeRate: 0.0175,
			StartDate:    "2000-01-01",
			EndDate:      "2023-06-30",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load merges defaults, the given TOML files (missing ones are skipped) and
// environment overrides, in that order.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if _, _, err := cfg.Simulation.Range(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("WEBHOOK_PUBLIC_URL"); v != "" {
		cfg.Telegram.WebhookPublicURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("FRONTIER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FRONTIER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FRONTIER_YAHOO_CACHE_DIR"); v != "" {
		cfg.Yahoo.CacheDir = v
	}
	if v, err := strconv.Atoi(os.Getenv("FRONTIER_SAMPLES")); err == nil && v > 0 {
		cfg.Simulation.Samples = v
	}
	if v, err := strconv.Atoi(os.Getenv("FRONTIER_MAX_SAMPLES")); err == nil && v > 0 {
		cfg.Simulation.MaxSamples = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("FRONTIER_RISK_FREE_RATE"), 64); err == nil {
		cfg.Simulation.RiskFreeRate = v
	}
}

// ValidateBot returns the names of settings the webhook bot cannot start without.
func (c *Config) ValidateBot() []string {
	var missing []string
	if c.Telegram.Token == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.WebhookPublicURL == "" {
		missing = append(missing, "WEBHOOK_PUBLIC_URL")
	}
	return missing
}
