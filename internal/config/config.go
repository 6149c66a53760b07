// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Poll      PollConfig      `mapstructure:"poll"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	BoltPath string `mapstructure:"bolt_path"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// CacheConfig holds cache TTLs.
type CacheConfig struct {
	LiveTTL      time.Duration `mapstructure:"live_ttl"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	CompletedTTL time.Duration `mapstructure:"completed_ttl"`
	Grace        time.Duration `mapstructure:"grace"`
}

// PollConfig holds the refresh timer intervals.
type PollConfig struct {
	LiveInterval    time.Duration `mapstructure:"live_interval"`
	ResultsInterval time.Duration `mapstructure:"results_interval"`
	IdleInterval    time.Duration `mapstructure:"idle_interval"`
}

// ProviderConfig holds upstream data provider settings.
type ProviderConfig struct {
	ESPNBaseURL string        `mapstructure:"espn_base_url"`
	OddsBaseURL string        `mapstructure:"odds_base_url"`
	OddsAPIKey  string        `mapstructure:"odds_api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Sports      []string      `mapstructure:"sports"`
}

// ScoringConfig holds scoring defaults.
type ScoringConfig struct {
	DefaultMode            string `mapstructure:"default_mode"`
	MinPicksForPerfect     int    `mapstructure:"min_picks_for_perfect"`
	MinPicksForNearPerfect int    `mapstructure:"min_picks_for_near_perfect"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, STORE_DRIVER, PROVIDER_ODDS_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Unmarshal only sees env overrides for keys viper already knows.
	v.SetDefault("bot.token", "")
	v.SetDefault("database.password", "")
	v.SetDefault("provider.odds_api_key", "")

	v.SetDefault("store.driver", DriverBolt)
	v.SetDefault("store.bolt_path", "data/picks.db")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "picks")
	v.SetDefault("database.name", "picks")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("cache.live_ttl", "1m")
	v.SetDefault("cache.default_ttl", "10m")
	v.SetDefault("cache.completed_ttl", "24h")
	v.SetDefault("cache.grace", "24h")

	v.SetDefault("poll.live_interval", "30s")
	v.SetDefault("poll.results_interval", "60s")
	v.SetDefault("poll.idle_interval", "5m")

	v.SetDefault("provider.espn_base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("provider.odds_base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("provider.sports", []string{"NBA", "NFL", "NHL", "MLB"})

	v.SetDefault("scoring.default_mode", "classic")
	v.SetDefault("scoring.min_picks_for_perfect", 1)
	v.SetDefault("scoring.min_picks_for_near_perfect", 2)

	v.SetDefault("log.level", "info")
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverBolt, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverBolt && c.Store.BoltPath == "" {
		return fmt.Errorf("store.bolt_path is required for the bolt driver")
	}
	if c.Poll.IdleInterval < c.Poll.LiveInterval {
		return fmt.Errorf("poll.idle_interval must not be shorter than poll.live_interval")
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
