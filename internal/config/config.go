// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Vision        VisionConfig        `yaml:"vision"`
	Sources       SourcesConfig       `yaml:"sources"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// VisionConfig defines the image annotation collaborator settings.
type VisionConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxKeywords int           `yaml:"max_keywords"`
}

// SourcesConfig defines the retail sources to aggregate over.
type SourcesConfig struct {
	Amazon   SourceConfig  `yaml:"amazon"`
	Flipkart SourceConfig  `yaml:"flipkart"`
	Browser  BrowserConfig `yaml:"browser"`
}

// SourceConfig defines per-source scraping settings.
type SourceConfig struct {
	Enabled   bool            `yaml:"enabled"`
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	MaxOffers int             `yaml:"max_offers"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines per-source request rate limiting.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// BrowserConfig defines headless browser settings shared by all sources.
type BrowserConfig struct {
	UserAgent  string        `yaml:"user_agent"`
	Headless   bool          `yaml:"headless"`
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

// ScheduleConfig defines cron intervals for the wishlist refresher.
type ScheduleConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	StaggerOffset   time.Duration `yaml:"stagger_offset"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyVisionDefaults(&cfg.Vision)
	applySourcesDefaults(&cfg.Sources)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyVisionDefaults(v *VisionConfig) {
	if v.Timeout == 0 {
		v.Timeout = 15 * time.Second
	}
	if v.MaxKeywords == 0 {
		v.MaxKeywords = 10
	}
}

func applySourcesDefaults(s *SourcesConfig) {
	applySourceDefaults(&s.Amazon, "https://www.amazon.in")
	applySourceDefaults(&s.Flipkart, "https://www.flipkart.com")
	if s.Browser.UserAgent == "" {
		s.Browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if s.Browser.NavTimeout == 0 {
		s.Browser.NavTimeout = 20 * time.Second
	}
}

func applySourceDefaults(s *SourceConfig, baseURL string) {
	if s.BaseURL == "" {
		s.BaseURL = baseURL
	}
	if s.Timeout == 0 {
		s.Timeout = 8 * time.Second
	}
	if s.MaxOffers == 0 {
		s.MaxOffers = 5
	}
	applyRateLimitDefaults(&s.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 2
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 2000
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshInterval == 0 {
		s.RefreshInterval = 6 * time.Hour
	}
	if s.StaggerOffset == 0 {
		s.StaggerOffset = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Vision.Endpoint == "" {
		errs = append(errs, fmt.Errorf("vision.endpoint is required"))
	}

	if !cfg.Sources.Amazon.Enabled && !cfg.Sources.Flipkart.Enabled {
		errs = append(errs, fmt.Errorf("at least one source must be enabled"))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}
