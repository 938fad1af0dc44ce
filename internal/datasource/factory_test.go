package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/models"
)

func factoryConfig() *config.Config {
	return &config.Config{
		DataSources: config.DataSourcesConfig{
			HTTP:      config.HTTPConfig{TimeoutSeconds: 5, MaxRetries: 2, RateLimit: 3, CircuitBreakerMax: 4},
			ESPN:      config.ProviderConfig{Enabled: true},
			Simulated: config.SimulatedConfig{Enabled: true, Seed: 11},
		},
	}
}

func TestFactory_NewSources(t *testing.T) {
	sources, err := NewFactory(factoryConfig(), nil).NewSources()
	require.NoError(t, err)
	defer sources.Close()

	assert.Equal(t, []SourceType{ESPNSourceType, SimulatedSourceType}, sources.Available())
	espn, ok := sources.Get(ESPNSourceType)
	require.True(t, ok)
	assert.Equal(t, "espn", espn.Name())
	_, ok = sources.Get(FootballDataSourceType)
	assert.False(t, ok)
	assert.Nil(t, sources.Odds)
	require.NotNil(t, sources.Simulated)
}

func TestFactory_HTTPClientConfig(t *testing.T) {
	httpCfg := NewFactory(factoryConfig(), nil).HTTPClientConfig()

	assert.Equal(t, 5*time.Second, httpCfg.Timeout)
	assert.Equal(t, 2, httpCfg.MaxRetries)
	assert.Equal(t, 3.0, httpCfg.RateLimit)
	assert.Equal(t, 4, httpCfg.CircuitBreakerMax)
}

func TestFactory_Errors(t *testing.T) {
	t.Run("missing football-data key", func(t *testing.T) {
		cfg := factoryConfig()
		cfg.DataSources.FootballData = config.ProviderConfig{Enabled: true}
		_, err := NewFactory(cfg, nil).NewSources()
		assert.Error(t, err)
	})

	t.Run("missing odds key", func(t *testing.T) {
		cfg := factoryConfig()
		cfg.DataSources.OddsAPI = config.ProviderConfig{Enabled: true}
		_, err := NewFactory(cfg, nil).NewSources()
		assert.Error(t, err)
	})

	t.Run("nothing enabled", func(t *testing.T) {
		cfg := factoryConfig()
		cfg.DataSources.ESPN.Enabled = false
		cfg.DataSources.Simulated.Enabled = false
		_, err := NewFactory(cfg, nil).NewSources()
		assert.Error(t, err)
	})
}

func TestFixtureData_ToFixture(t *testing.T) {
	fd := FixtureData{SourceID: "401", Source: "espn", Sport: "soccer", League: "eng.1",
		HomeTeam: "Arsenal", AwayTeam: "Chelsea", StartTime: time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)}

	a := fd.ToFixture(models.MarketBTTS, 3)
	b := fd.ToFixture(models.MarketBTTS, 3)

	assert.Equal(t, a.ID, b.ID, "identity is stable across cycles")
	assert.Equal(t, 3, a.DiscoveredOrder)
	assert.Equal(t, models.MarketBTTS, a.Market)
	require.NoError(t, a.Validate())
}
