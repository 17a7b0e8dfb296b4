package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultHistoryPageSize    = 20
	defaultHistoryMaxPageSize = 100
	defaultWriteRateLimit     = 120
	defaultTokenCacheTTL      = 60
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// sessions history
	HistoryDefaultPageSize int `toml:"history_default_page_size"`
	HistoryMaxPageSize     int `toml:"history_max_page_size"`

	WriteRateLimitAllowedPerMin int      `toml:"write_rate_limit_allowed_per_min"`
	AuthTokenCacheTTLSeconds    int      `toml:"auth_token_cache_ttl_seconds"`
	AllowedOrigins              []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		if cfg != nil && cfg.Environment == "" {
			cfg.Environment = "development"
		}
	case "prod", "production":
		cfg = t.Production
		if cfg != nil && cfg.Environment == "" {
			cfg.Environment = "production"
		}
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HistoryDefaultPageSize <= 0 {
		c.HistoryDefaultPageSize = defaultHistoryPageSize
	}
	if c.HistoryMaxPageSize <= 0 {
		c.HistoryMaxPageSize = defaultHistoryMaxPageSize
	}
	if c.WriteRateLimitAllowedPerMin <= 0 {
		c.WriteRateLimitAllowedPerMin = defaultWriteRateLimit
	}
	if c.AuthTokenCacheTTLSeconds <= 0 {
		c.AuthTokenCacheTTLSeconds = defaultTokenCacheTTL
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 {
		return errors.New("port must be set")
	}
	if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
		return errors.New("postgres host, port and db name must be set")
	}
	if c.HistoryDefaultPageSize > c.HistoryMaxPageSize {
		return fmt.Errorf(
			"history default page size (%d) exceeds max page size (%d)",
			c.HistoryDefaultPageSize, c.HistoryMaxPageSize,
		)
	}
	return nil
}
