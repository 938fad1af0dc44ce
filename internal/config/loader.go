// Package config provides configuration management for the Smart Picks service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "SMART_PICKS"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	if len(cfg.Markets) == 0 {
		cfg.Markets = DefaultMarkets()
	}
	return cfg, nil
}

// DefaultMarkets returns the stock market configuration: BTTS from the ESPN
// soccer scoreboards and the MLB runline.
func DefaultMarkets() []MarketConfig {
	return []MarketConfig{
		{
			Name:           "btts",
			Enabled:        true,
			Threshold:      0.65,
			Source:         "espn",
			Leagues:        []string{"eng.1", "esp.1", "ger.1", "ita.1"},
			Schedule:       "*/30 * * * *",
			LookaheadHours: 72,
			OddsSportKey:   "soccer_epl",
		},
		{
			Name:           "runline",
			Enabled:        true,
			Threshold:      0.80,
			Source:         "espn",
			Leagues:        []string{"mlb"},
			Schedule:       "0 * * * *",
			LookaheadHours: 24,
			OddsSportKey:   "baseball_mlb",
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smart-picks")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("engine.window_size", 10)
	v.SetDefault("engine.history_limit", 10)
	v.SetDefault("engine.max_concurrent_fetches", 4)
	v.SetDefault("engine.cycle_timeout_seconds", 120)
	v.SetDefault("data_sources.http.timeout_seconds", 15)
	v.SetDefault("data_sources.http.max_retries", 3)
	v.SetDefault("data_sources.http.rate_limit", 5.0)
	v.SetDefault("data_sources.http.circuit_breaker_max", 5)
	v.SetDefault("data_sources.espn.enabled", true)
	v.SetDefault("data_sources.espn.base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("data_sources.football_data.base_url", "https://api.football-data.org/v4")
	v.SetDefault("data_sources.odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("data_sources.simulated.enabled", true)
	v.SetDefault("data_sources.simulated.seed", 42)
	v.SetDefault("cache.ttl_seconds", 900)
	v.SetDefault("cache.max_size", 5000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.websocket_path", "/ws/picks")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
