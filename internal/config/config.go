package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"MarketInsights/internal/collector"
	"MarketInsights/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
		APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
		Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	} `yaml:"data_source" envconfig:"FRED"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"HTTP_ADDR"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Report struct {
		Cron         string `yaml:"cron" envconfig:"REPORT_CRON"`
		LookbackDays int    `yaml:"lookback_days" envconfig:"REPORT_LOOKBACK_DAYS" validate:"gt=0"`
	} `yaml:"report"`
	// DefaultStart is the fetch start used when a caller gives none.
	DefaultStart string             `yaml:"default_start" envconfig:"DEFAULT_START" validate:"required,datetime=2006-01-02"`
	Series       []model.SeriesInfo `yaml:"series" ignored:"true" validate:"min=1,dive"`
	Proxy        string             `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// DefaultSeries is the catalog used when the config file lists none.
var DefaultSeries = []model.SeriesInfo{
	{ID: "DTWEXBGS", Label: "USD Index"},
	{ID: "DGS10", Label: "10-Year Treasury Yield"},
	{ID: "MORTGAGE30US", Label: "30-Year Mortgage Rate"},
	{ID: "CSUSHPINSA", Label: "Home Price Index"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
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

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = collector.DefaultBaseURL
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Report.Cron == "" {
		cfg.Report.Cron = "0 0 8 * * 1-5"
	}
	if cfg.Report.LookbackDays == 0 {
		cfg.Report.LookbackDays = 90
	}
	if cfg.DefaultStart == "" {
		cfg.DefaultStart = "2025-01-01"
	}
	if len(cfg.Series) == 0 {
		cfg.Series = append([]model.SeriesInfo(nil), DefaultSeries...)
	}
}

// Validate checks field constraints. An empty API key is allowed; the upstream rejects it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether both bot credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
