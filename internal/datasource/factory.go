package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// ESPN scoreboard data source type
	ESPNSourceType SourceType = espnSourceName
	// football-data.org data source type
	FootballDataSourceType SourceType = footballDataSourceName
	// Seeded simulated data source type
	SimulatedSourceType SourceType = simulatedSourceName
)

// Sources is the set of providers built from configuration
type Sources struct {
	byType    map[SourceType]DataSource
	Simulated *SimulatedSource
	Odds      OddsSource // nil when no odds provider is enabled
	http      *RateLimitedHTTPClient
}

// Get returns the enabled source of the given type
func (s *Sources) Get(t SourceType) (DataSource, bool) {
	src, ok := s.byType[t]
	return src, ok
}

// Available lists the enabled source types
func (s *Sources) Available() []SourceType {
	var out []SourceType
	for _, t := range []SourceType{ESPNSourceType, FootballDataSourceType, SimulatedSourceType} {
		if _, ok := s.byType[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Close releases the shared HTTP client
func (s *Sources) Close() error {
	if s.http == nil {
		return nil
	}
	return s.http.Close()
}

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// HTTPClientConfig converts the configured HTTP settings
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	httpCfg := DefaultHTTPClientConfig()
	src := f.config.DataSources.HTTP
	if src.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(src.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = src.MaxRetries
	if src.RateLimit > 0 {
		httpCfg.RateLimit = src.RateLimit
	}
	if src.CircuitBreakerMax > 0 {
		httpCfg.CircuitBreakerMax = src.CircuitBreakerMax
	}
	return httpCfg
}

// NewSources creates every enabled data source sharing one rate limited HTTP client
func (f *Factory) NewSources() (*Sources, error) {
	if f.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	ds := f.config.DataSources
	httpClient := NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)

	sources := &Sources{
		byType:    make(map[SourceType]DataSource),
		Simulated: NewSimulatedSource(ds.Simulated.Seed, ds.Simulated.Enabled),
		http:      httpClient,
	}

	if ds.ESPN.Enabled {
		sources.byType[ESPNSourceType] = NewESPNClient(httpClient, ds.ESPN.BaseURL, true, f.logger)
	} else {
		f.logf("Skipping disabled data source: %s", ESPNSourceType)
	}

	if ds.FootballData.Enabled {
		if ds.FootballData.APIKey == "" {
			return nil, fmt.Errorf("football-data API key is required")
		}
		sources.byType[FootballDataSourceType] = NewFootballDataClient(httpClient, ds.FootballData.BaseURL, ds.FootballData.APIKey, true, f.logger)
	} else {
		f.logf("Skipping disabled data source: %s", FootballDataSourceType)
	}

	if ds.Simulated.Enabled {
		sources.byType[SimulatedSourceType] = sources.Simulated
	}

	if ds.OddsAPI.Enabled {
		if ds.OddsAPI.APIKey == "" {
			return nil, fmt.Errorf("odds API key is required")
		}
		sources.Odds = NewOddsAPIClient(httpClient, ds.OddsAPI.BaseURL, ds.OddsAPI.APIKey, true, f.logger)
	}

	if len(sources.byType) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	for _, t := range sources.Available() {
		f.logf("Created data source: %s", t)
	}
	return sources, nil
}

func (f *Factory) logf(format string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Infof(format, args...)
	}
}
