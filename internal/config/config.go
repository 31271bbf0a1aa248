// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ScraperConfig governs the pipeline itself.
type ScraperConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	Workers         int    `mapstructure:"workers"`
	DurationMinutes int    `mapstructure:"duration_minutes"`
	QueueDepth      int    `mapstructure:"queue_depth"`
	SettleDelayMs   int    `mapstructure:"settle_delay_ms"`
	JoinTimeoutSec  int    `mapstructure:"join_timeout_seconds"`
}

// HTTPConfig configures the plain document fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// HeadlessConfig configures the rendering sessions.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// OutputConfig sets the result and statistics file paths.
type OutputConfig struct {
	ContactsFile string `mapstructure:"contacts_file"`
	StatsFile    string `mapstructure:"stats_file"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from defaults, an optional file, and the environment.
// Precedence is env over file over defaults; CLI flags bound into v win over
// everything.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.base_url", "https://www.dlsu.edu.ph/")
	v.SetDefault("scraper.workers", 2)
	v.SetDefault("scraper.duration_minutes", 1)
	v.SetDefault("scraper.queue_depth", 256)
	v.SetDefault("scraper.settle_delay_ms", 2000)
	v.SetDefault("scraper.join_timeout_seconds", 5)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "facultyscraper/1.0")
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("output.contacts_file", "contacts.csv")
	v.SetDefault("output.stats_file", "scraping_stats.json")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url must be set")
	}
	if c.Scraper.Workers <= 0 {
		return fmt.Errorf("scraper.workers must be > 0")
	}
	if c.Scraper.DurationMinutes <= 0 {
		return fmt.Errorf("scraper.duration_minutes must be > 0")
	}
	if c.Scraper.QueueDepth <= 0 {
		return fmt.Errorf("scraper.queue_depth must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.NavTimeoutSec <= 0 {
		return fmt.Errorf("headless.nav_timeout_seconds must be > 0 when headless is enabled")
	}
	if c.Output.ContactsFile == "" {
		return fmt.Errorf("output.contacts_file must be set")
	}
	if c.Output.StatsFile == "" {
		return fmt.Errorf("output.stats_file must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// EngineConfig converts the loaded values into the engine's config.
func (c Config) EngineConfig() scraper.Config {
	return scraper.Config{
		BaseURL:     c.Scraper.BaseURL,
		Workers:     c.Scraper.Workers,
		RunDuration: time.Duration(c.Scraper.DurationMinutes) * time.Minute,
		QueueDepth:  c.Scraper.QueueDepth,
		SettleDelay: time.Duration(c.Scraper.SettleDelayMs) * time.Millisecond,
		JoinTimeout: time.Duration(c.Scraper.JoinTimeoutSec) * time.Second,
	}
}
