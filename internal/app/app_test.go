package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/models"
)

func simulatedConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithDefaults("testdata/missing.yaml")
	require.NoError(t, err)

	cfg.DataSources.ESPN.Enabled = false
	for i := range cfg.Markets {
		cfg.Markets[i].Source = "simulated"
	}
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func TestNew_InMemorySimulated(t *testing.T) {
	a, err := New(context.Background(), simulatedConfig(t), logger.NewDiscardLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.NotNil(t, a.Repos)
	assert.ElementsMatch(t, []models.Market{models.MarketBTTS, models.MarketRunline}, a.Service.Markets())

	result, err := a.Service.RunCycle(context.Background(), models.MarketBTTS)
	require.NoError(t, err)
	assert.Equal(t, models.PickSourceSimulated, result.Source)
	assert.NotEmpty(t, result.Fixtures)

	stored, err := a.Service.LatestPicks(context.Background(), models.MarketBTTS, 0)
	require.NoError(t, err)
	assert.Len(t, stored, len(result.Picks))

	run, err := a.Service.LatestRun(context.Background(), models.MarketBTTS)
	require.NoError(t, err)
	assert.Equal(t, result.CycleID, run.CycleID)
}

func TestNew_NoSources(t *testing.T) {
	cfg := simulatedConfig(t)
	cfg.DataSources.Simulated.Enabled = false

	_, err := New(context.Background(), cfg, logger.NewDiscardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data sources")
}
