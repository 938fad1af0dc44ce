// Package config provides configuration management for the Smart Picks service.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/smart-picks/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Engine      EngineConfig      `mapstructure:"engine" validate:"required"`
	Markets     []MarketConfig    `mapstructure:"markets" validate:"required,min=1,dive"`
	DataSources DataSourcesConfig `mapstructure:"data_sources" validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache" validate:"required"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration.
// When Enabled is false picks are kept in memory only.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// EngineConfig holds the pick engine knobs shared by every market
type EngineConfig struct {
	WindowSize           int `mapstructure:"window_size" validate:"required,gt=0"`
	HistoryLimit         int `mapstructure:"history_limit" validate:"required,gtefield=WindowSize"`
	MaxConcurrentFetches int `mapstructure:"max_concurrent_fetches" validate:"required,gt=0"`
	CycleTimeoutSeconds  int `mapstructure:"cycle_timeout_seconds" validate:"required,gt=0"`
}

// MarketConfig configures one pick market
type MarketConfig struct {
	Name           string   `mapstructure:"name" validate:"required,market"`
	Enabled        bool     `mapstructure:"enabled"`
	Threshold      float64  `mapstructure:"threshold" validate:"gte=0,lte=1"`
	Source         string   `mapstructure:"source" validate:"required,oneof=espn football_data simulated"`
	Leagues        []string `mapstructure:"leagues" validate:"required,min=1"`
	Schedule       string   `mapstructure:"schedule" validate:"required,cron"`
	LookaheadHours int      `mapstructure:"lookahead_hours" validate:"required,gt=0"`
	OddsSportKey   string   `mapstructure:"odds_sport_key"`
}

// DataSourcesConfig holds all provider configuration
type DataSourcesConfig struct {
	HTTP         HTTPConfig      `mapstructure:"http" validate:"required"`
	ESPN         ProviderConfig  `mapstructure:"espn"`
	FootballData ProviderConfig  `mapstructure:"football_data"`
	OddsAPI      ProviderConfig  `mapstructure:"odds_api"`
	Simulated    SimulatedConfig `mapstructure:"simulated"`
}

// HTTPConfig configures the shared rate limited HTTP client
type HTTPConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
}

// ProviderConfig configures a single external data provider
type ProviderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

// SimulatedConfig configures the fallback provider
type SimulatedConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Seed    int64 `mapstructure:"seed"`
}

// CacheConfig configures the team rate cache
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxSize    int `mapstructure:"max_size" validate:"required,gt=0"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	MetricsPath   string `mapstructure:"metrics_path" validate:"required,startswith=/"`
	WebSocketPath string `mapstructure:"websocket_path" validate:"required,startswith=/"`
}

// SecretsConfig enables the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Market returns the configuration for the named market
func (c *Config) Market(m models.Market) (MarketConfig, bool) {
	for _, mc := range c.Markets {
		if mc.Name == string(m) {
			return mc, true
		}
	}
	return MarketConfig{}, false
}

// EnabledMarkets returns the markets that should be refreshed
func (c *Config) EnabledMarkets() []MarketConfig {
	var enabled []MarketConfig
	for _, mc := range c.Markets {
		if mc.Enabled {
			enabled = append(enabled, mc)
		}
	}
	return enabled
}

// CycleTimeout returns the per-cycle deadline
func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.Engine.CycleTimeoutSeconds) * time.Second
}

// CacheTTL returns the team rate cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Market returns the parsed market name
func (m MarketConfig) Market() models.Market {
	return models.Market(m.Name)
}

// Lookahead returns how far ahead fixtures are fetched
func (m MarketConfig) Lookahead() time.Duration {
	return time.Duration(m.LookaheadHours) * time.Hour
}
